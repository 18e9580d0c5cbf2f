// Package render projects block documents to HTML. Rendering is pure: the same
// document and context always produce the same bytes, which is what keeps editor
// preview, template preview and the public page in parity.
package render

import (
	"bytes"
	"html/template"

	"kashpages/internal/domain/blocks"
)

// Context controls how a document is laid out.
type Context struct {
	Mode PreviewMode
	// Editor adds selection and delete affordances around every block.
	Editor     bool
	SelectedID string
}

// Output is the rendered document plus any blocks that had to fall back.
type Output struct {
	HTML     template.HTML
	Width    int
	Warnings []blocks.MalformedBlockWarning
}

type blockView struct {
	ID       string
	Type     string
	Editor   bool
	Selected bool
	Body     template.HTML
}

type documentView struct {
	Mode   PreviewMode
	Width  int
	Blocks []template.HTML
}

// Render lays out doc in display order. A block that cannot be rendered is replaced
// by a "<type> section" placeholder and reported in Output.Warnings; it never stops
// the rest of the document from rendering.
func Render(doc *blocks.Document, ctx Context) Output {
	mode := ctx.Mode
	if mode == "" {
		mode = ModeDesktop
	}
	out := Output{Width: mode.Width()}

	list := doc.List()
	view := documentView{Mode: mode, Width: out.Width, Blocks: make([]template.HTML, 0, len(list))}
	for _, b := range list {
		body, warn := renderBlock(b)
		if warn != nil {
			out.Warnings = append(out.Warnings, *warn)
		}
		view.Blocks = append(view.Blocks, wrap(b, body, ctx))
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "document", view); err != nil {
		// the document template only concatenates trusted fragments
		return Output{Width: out.Width, Warnings: out.Warnings}
	}
	out.HTML = template.HTML(buf.String())
	return out
}

func renderBlock(b blocks.Block) (template.HTML, *blocks.MalformedBlockWarning) {
	if !blocks.HasContent(b.Props) {
		reason := "missing required props"
		if !b.Type.Known() {
			reason = "unrecognized block type"
		} else if _, raw := b.Props.(*blocks.RawProps); raw {
			reason = "malformed props"
		}
		return fallback(b.Type), &blocks.MalformedBlockWarning{BlockID: b.ID, Type: b.Type, Reason: reason}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, templateFor(b.Type), b.Props); err != nil {
		return fallback(b.Type), &blocks.MalformedBlockWarning{BlockID: b.ID, Type: b.Type, Reason: "render failed: " + err.Error()}
	}
	return template.HTML(buf.String()), nil
}

func fallback(t blocks.Type) template.HTML {
	label := string(t)
	if label == "" {
		label = "unknown"
	}
	var buf bytes.Buffer
	_ = tmpl.ExecuteTemplate(&buf, "fallback", label)
	return template.HTML(buf.String())
}

func wrap(b blocks.Block, body template.HTML, ctx Context) template.HTML {
	v := blockView{
		ID:       b.ID,
		Type:     string(b.Type),
		Editor:   ctx.Editor,
		Selected: ctx.Editor && ctx.SelectedID != "" && ctx.SelectedID == b.ID,
		Body:     body,
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "block", v); err != nil {
		return body
	}
	return template.HTML(buf.String())
}
