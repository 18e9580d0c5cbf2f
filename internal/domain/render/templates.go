package render

import (
	"html/template"
	"net/url"
	"regexp"
	"strings"

	"kashpages/internal/domain/blocks"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy = bluemonday.UGCPolicy()
	nonDigits  = regexp.MustCompile(`[^0-9+]`)
	nonWord    = regexp.MustCompile(`[^a-z0-9-]`)
)

var funcs = template.FuncMap{
	"link":      safeLink,
	"href":      href,
	"embed":     safeEmbed,
	"rich":      richText,
	"tel":       telLink,
	"wa":        whatsappLink,
	"mailto":    mailtoLink,
	"spacer":    spacerHeight,
	"level":     headingLevel,
	"token":     classToken,
	"inputType": inputType,
	"stars":     stars,
}

var tmpl = template.Must(template.New("render").Funcs(funcs).Parse(`
{{define "hero"}}<section class="kp-hero">{{with link .BackgroundImage}}<img class="kp-hero-bg" src="{{.}}" alt="">{{end}}{{with .Title}}<h1>{{.}}</h1>{{end}}{{with .Subtitle}}<p class="kp-subtitle">{{.}}</p>{{end}}{{if .ButtonText}}<a class="kp-button" href="{{href .ButtonLink}}" data-track="button_click">{{.ButtonText}}</a>{{end}}</section>{{end}}

{{define "features"}}<section class="kp-features">{{with .Title}}<h2>{{.}}</h2>{{end}}{{if .Items}}<div class="kp-grid">{{range .Items}}<div class="kp-card">{{with .Title}}<h3>{{.}}</h3>{{end}}{{with .Desc}}<p>{{.}}</p>{{end}}</div>{{end}}</div>{{end}}</section>{{end}}

{{define "testimonials"}}<section class="kp-testimonials">{{with .Title}}<h2>{{.}}</h2>{{end}}{{range .Items}}<blockquote class="kp-testimonial">{{with .Text}}<p>{{.}}</p>{{end}}{{with .Name}}<cite>{{.}}</cite>{{end}}</blockquote>{{end}}</section>{{end}}

{{define "pricing"}}<section class="kp-pricing">{{with .Title}}<h2>{{.}}</h2>{{end}}{{if .Plans}}<div class="kp-grid">{{range .Plans}}<div class="kp-plan">{{with .Name}}<h3>{{.}}</h3>{{end}}{{with .Price}}<p class="kp-price">{{.}}</p>{{end}}{{if .Features}}<ul>{{range .Features}}<li>{{.}}</li>{{end}}</ul>{{end}}</div>{{end}}</div>{{end}}</section>{{end}}

{{define "faq"}}<section class="kp-faq">{{with .Title}}<h2>{{.}}</h2>{{end}}{{range .Items}}{{if .Q}}<details><summary>{{.Q}}</summary>{{with .A}}<p>{{.}}</p>{{end}}</details>{{end}}{{end}}</section>{{end}}

{{define "gallery"}}<section class="kp-gallery">{{with .Title}}<h2>{{.}}</h2>{{end}}<div class="kp-grid">{{range .Images}}{{$caption := .Caption}}{{with link .URL}}<figure><img src="{{.}}" alt="{{$caption}}" loading="lazy">{{with $caption}}<figcaption>{{.}}</figcaption>{{end}}</figure>{{end}}{{end}}</div></section>{{end}}

{{define "contact"}}<section class="kp-contact" id="contact">{{with .Title}}<h2>{{.}}</h2>{{end}}{{with .Email}}<p><a href="{{mailto .}}">{{.}}</a></p>{{end}}{{with .Phone}}<p><a href="{{tel .}}" data-track="phone_click">{{.}}</a></p>{{end}}{{with .WhatsApp}}<p><a href="{{wa .}}" data-track="whatsapp_click">WhatsApp</a></p>{{end}}{{with .Address}}<address>{{.}}</address>{{end}}</section>{{end}}

{{define "footer"}}<footer class="kp-footer">{{with .Text}}<p>{{.}}</p>{{end}}{{if .Links}}<nav>{{range .Links}}{{if .Label}}<a href="{{href .URL}}">{{.Label}}</a>{{end}}{{end}}</nav>{{end}}</footer>{{end}}

{{define "heading"}}{{$l := level .Level}}{{if eq $l 1}}<h1 class="kp-heading">{{.Text}}</h1>{{else if eq $l 3}}<h3 class="kp-heading">{{.Text}}</h3>{{else if eq $l 4}}<h4 class="kp-heading">{{.Text}}</h4>{{else}}<h2 class="kp-heading">{{.Text}}</h2>{{end}}{{end}}

{{define "paragraph"}}<div class="kp-paragraph">{{rich .Text}}</div>{{end}}

{{define "button"}}<div class="kp-button-row"><a class="kp-button kp-button-{{token .Variant}}" href="{{href .Link}}" data-track="button_click">{{.Text}}</a></div>{{end}}

{{define "image"}}<figure class="kp-image">{{with link .Src}}<img src="{{.}}" alt="{{$.Alt}}" loading="lazy">{{end}}{{with .Caption}}<figcaption>{{.}}</figcaption>{{end}}</figure>{{end}}

{{define "video"}}<div class="kp-video">{{with embed .URL}}<iframe src="{{.}}" title="{{$.Title}}" loading="lazy" allowfullscreen></iframe>{{else}}<p>{{or .Title "Video"}}</p>{{end}}</div>{{end}}

{{define "form"}}<form class="kp-form">{{with .Title}}<h2>{{.}}</h2>{{end}}{{range .Fields}}{{if .Name}}<label>{{or .Label .Name}}{{if eq .Type "textarea"}}<textarea name="{{.Name}}"{{if .Required}} required{{end}}></textarea>{{else}}<input type="{{inputType .Type}}" name="{{.Name}}"{{if .Required}} required{{end}}>{{end}}</label>{{end}}{{end}}<button type="submit">{{or .SubmitText "Send"}}</button></form>{{end}}

{{define "divider"}}<hr class="kp-divider">{{end}}

{{define "spacer"}}<div class="kp-spacer" style="height: {{spacer .Height}}px"></div>{{end}}

{{define "social-links"}}<nav class="kp-social">{{range .Links}}{{$platform := .Platform}}{{with link .URL}}<a href="{{.}}" rel="noopener" target="_blank">{{or $platform "link"}}</a>{{end}}{{end}}</nav>{{end}}

{{define "map"}}<section class="kp-map">{{with embed .EmbedURL}}<iframe src="{{.}}" title="Map" loading="lazy"></iframe>{{end}}{{with .Address}}<address>{{.}}</address>{{end}}</section>{{end}}

{{define "fallback"}}<section class="kp-fallback" data-block-type="{{.}}"><p>{{.}} section</p></section>{{end}}

{{define "block"}}{{if .Editor}}<div class="kp-block{{if .Selected}} kp-selected{{end}}" data-block-id="{{.ID}}" data-block-type="{{.Type}}"><div class="kp-block-toolbar"><button type="button" data-action="select" data-block-id="{{.ID}}">{{.Type}}</button><button type="button" data-action="delete" data-block-id="{{.ID}}">Delete</button></div>{{.Body}}</div>{{else}}<div class="kp-block" data-block-type="{{.Type}}">{{.Body}}</div>{{end}}{{end}}

{{define "document"}}<div class="kp-page kp-mode-{{.Mode}}"{{with .Width}} style="max-width: {{.}}px"{{end}}>{{range .Blocks}}{{.}}{{end}}</div>{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{with .Description}}<meta name="description" content="{{.}}">
{{end}}{{with .Keywords}}<meta name="keywords" content="{{.}}">
{{end}}{{with .Title}}<meta property="og:title" content="{{.}}">
{{end}}{{with link .OGImage}}<meta property="og:image" content="{{.}}">
{{end}}{{if .NoIndex}}<meta name="robots" content="noindex">
{{end}}</head>
<body>
{{.Content}}
{{with .Reviews}}<section class="kp-reviews"><h2>Reviews</h2>{{range .}}<blockquote class="kp-review"><p class="kp-rating" aria-label="{{.Rating}} out of 5">{{stars .Rating}}</p>{{with .Comment}}<p>{{.}}</p>{{end}}<cite>{{.Name}}</cite></blockquote>{{end}}</section>
{{end}}{{if .Branding}}<footer class="kp-branding"><a href="https://kashpages.com">Built with Kashpages</a></footer>
{{end}}</body>
</html>
{{end}}

{{define "notfound"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex">
<title>Shop not found</title>
</head>
<body>
<main class="kp-not-found"><h1>Shop not found</h1><p>This page does not exist or is not published.</p></main>
</body>
</html>
{{end}}
`))

// templateFor maps a block type to its template name; every known type has one.
func templateFor(t blocks.Type) string {
	if t.Known() {
		return string(t)
	}
	return "fallback"
}

func safeLink(raw string) template.URL {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "#") || (strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//")) {
		return template.URL(s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return template.URL(u.String())
	}
	return ""
}

func href(raw string) template.URL {
	if u := safeLink(raw); u != "" {
		return u
	}
	return "#"
}

// safeEmbed only lets https iframes through and turns YouTube watch links into embeds.
func safeEmbed(raw string) template.URL {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.EqualFold(u.Scheme, "https") || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch {
	case host == "youtube.com" && u.Path == "/watch" && u.Query().Get("v") != "":
		return template.URL("https://www.youtube.com/embed/" + url.PathEscape(u.Query().Get("v")))
	case host == "youtu.be" && len(u.Path) > 1:
		return template.URL("https://www.youtube.com/embed/" + url.PathEscape(strings.TrimPrefix(u.Path, "/")))
	}
	return template.URL(u.String())
}

func richText(s string) template.HTML {
	return template.HTML(richPolicy.Sanitize(s))
}

func telLink(phone string) template.URL {
	digits := nonDigits.ReplaceAllString(phone, "")
	if digits == "" {
		return "#"
	}
	return template.URL("tel:" + digits)
}

func whatsappLink(phone string) template.URL {
	digits := strings.TrimPrefix(nonDigits.ReplaceAllString(phone, ""), "+")
	if digits == "" {
		return "#"
	}
	return template.URL("https://wa.me/" + digits)
}

func mailtoLink(email string) template.URL {
	email = strings.TrimSpace(email)
	if email == "" || strings.ContainsAny(email, " <>\"'") {
		return "#"
	}
	return template.URL("mailto:" + email)
}

func spacerHeight(h int) int {
	if h <= 0 {
		return blocks.DefaultSpacerHeight
	}
	if h > 400 {
		return 400
	}
	return h
}

func headingLevel(l int) int {
	if l < 1 || l > 4 {
		return 2
	}
	return l
}

func classToken(s string) string {
	s = nonWord.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
	if s == "" {
		return "primary"
	}
	return s
}

func stars(n int) string {
	n = max(0, min(n, 5))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func inputType(t string) string {
	switch t {
	case "email", "tel", "number", "date":
		return t
	default:
		return "text"
	}
}
