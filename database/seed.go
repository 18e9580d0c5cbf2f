package database

import (
	"context"
	"fmt"

	"kashpages/internal/domain/access"
	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/users"
	"kashpages/internal/persist"
	"kashpages/internal/platform/logger"
	"kashpages/internal/store"
)

type seedTemplate struct {
	slug, name, category, description string
	blocks                            []blocks.Block
}

func defaultTemplates() []seedTemplate {
	return []seedTemplate{
		{
			slug: "local-shop", name: "Local Shop", category: "retail",
			description: "A storefront page with highlights, contact details and a map.",
			blocks: []blocks.Block{
				{ID: "hero", Type: blocks.TypeHero, Props: &blocks.HeroProps{Title: "Your Shop Name", Subtitle: "Quality products, friendly service", ButtonText: "Contact us", ButtonLink: "#contact"}},
				{ID: "features", Type: blocks.TypeFeatures, Props: &blocks.FeaturesProps{Title: "Why shop with us", Items: []blocks.FeatureItem{
					{Title: "Fresh stock", Desc: "New arrivals every week"},
					{Title: "Fair prices", Desc: "No hidden costs"},
					{Title: "Home delivery", Desc: "Across the city"},
				}}, Order: 1},
				{ID: "contact", Type: blocks.TypeContact, Props: &blocks.ContactProps{Title: "Visit or call"}, Order: 2},
				{ID: "map", Type: blocks.TypeMap, Props: &blocks.MapProps{Address: "Your address"}, Order: 3},
				{ID: "footer", Type: blocks.TypeFooter, Props: &blocks.FooterProps{Text: "Thanks for visiting"}, Order: 4},
			},
		},
		{
			slug: "restaurant", name: "Restaurant", category: "food",
			description: "Menu highlights, photos and reviews.",
			blocks: []blocks.Block{
				{ID: "hero", Type: blocks.TypeHero, Props: &blocks.HeroProps{Title: "Your Restaurant", Subtitle: "Traditional recipes, cooked fresh", ButtonText: "Order on WhatsApp", ButtonLink: "#contact"}},
				{ID: "gallery", Type: blocks.TypeGallery, Props: &blocks.GalleryProps{Title: "From our kitchen"}, Order: 1},
				{ID: "pricing", Type: blocks.TypePricing, Props: &blocks.PricingProps{Title: "Menu", Plans: []blocks.PricingPlan{
					{Name: "Thali", Price: "₹250", Features: []string{"Rice", "Dal", "Two sabzis"}},
				}}, Order: 2},
				{ID: "reviews", Type: blocks.TypeTestimonials, Props: &blocks.TestimonialsProps{Title: "What guests say"}, Order: 3},
				{ID: "contact", Type: blocks.TypeContact, Props: &blocks.ContactProps{Title: "Find us"}, Order: 4},
			},
		},
		{
			slug: "services", name: "Services", category: "services",
			description: "Describe your services, answer common questions and collect enquiries.",
			blocks: []blocks.Block{
				{ID: "heading", Type: blocks.TypeHeading, Props: &blocks.HeadingProps{Text: "Our services", Level: 1}},
				{ID: "intro", Type: blocks.TypeParagraph, Props: &blocks.ParagraphProps{Text: "Tell visitors what you offer and who you help."}, Order: 1},
				{ID: "faq", Type: blocks.TypeFAQ, Props: &blocks.FAQProps{Title: "Questions", Items: []blocks.FAQItem{{Q: "How do I book?", A: "Send us a message below."}}}, Order: 2},
				{ID: "form", Type: blocks.TypeForm, Props: &blocks.FormProps{Title: "Send an enquiry", Fields: []blocks.FormField{
					{Name: "name", Label: "Name", Type: "text", Required: true},
					{Name: "phone", Label: "Phone", Type: "tel"},
				}}, Order: 3},
			},
		},
	}
}

// SeedTemplates adds the built-in templates whose slug is not in the catalog yet.
func SeedTemplates(ctx context.Context, cols store.Collections, log *logger.Logger) error {
	admin := persist.NewAdapter(cols, access.Principal{UserID: "system", Role: users.RoleAdmin})
	created := 0
	for _, t := range defaultTemplates() {
		existing, err := cols.Templates.Query(ctx, store.Query{Filters: []store.Filter{store.Where("slug", t.slug)}, Limit: 1})
		if err != nil {
			return fmt.Errorf("seed %s: %w", t.slug, err)
		}
		if len(existing) > 0 {
			continue
		}
		doc, err := blocks.NewDocument(t.blocks...)
		if err != nil {
			return fmt.Errorf("seed %s: %w", t.slug, err)
		}
		if _, err := admin.CreateTemplate(ctx, persist.NewTemplate{
			Slug: t.slug, Name: t.name, Category: t.category, Description: t.description, Doc: doc,
		}); err != nil {
			return fmt.Errorf("seed %s: %w", t.slug, err)
		}
		created++
	}
	if created > 0 {
		log.Info("Seeded templates", "count", created)
	}
	return nil
}
