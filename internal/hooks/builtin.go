package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kattalitextile/sitekit/internal/logging"
)

// SiteDispatcher returns a dispatcher wired with the site's hooks: the
// unconditional effects every page gets, plus the per-page bootstraps.
func SiteDispatcher(logger logging.Logger) *Dispatcher {
	d := NewDispatcher(logger)

	d.RegisterAlways(ScrollReveal)
	d.RegisterAlways(KineticText)
	d.RegisterAlways(TiltCards)
	d.RegisterAlways(LazyImages)

	d.RegisterPage("home", HomeCounters)
	d.RegisterPage("contact", FormWiring("/api/contact"))
	d.RegisterPage("rfq", FormWiring("/api/rfq"))
	d.RegisterPage("investors", InvestorChart(DefaultStockSeries()))
	d.RegisterPage("news", NewsFilters)
	d.RegisterPage("careers", CareersOpenings)

	return d
}

// Unconditional hooks

// ScrollReveal marks reveal-on-scroll elements as pending so the client
// observer can pick them up.
var ScrollReveal = HookFunc{
	HookName: "scroll-reveal",
	Fn: func(ctx context.Context, pageID string, region *Region) error {
		for _, n := range region.FindByClass("reveal-on-scroll") {
			SetAttr(n, "data-scroll", "pending")
		}
		return nil
	},
}

// KineticText splits the text of kinetic headings into per-letter spans with
// an index custom property for the staggered letter animation.
var KineticText = HookFunc{
	HookName: "kinetic-text",
	Fn: func(ctx context.Context, pageID string, region *Region) error {
		for _, n := range region.FindByClass("kinetic") {
			splitLetters(n)
		}
		return nil
	},
}

// TiltCards marks tilt cards for the pointer-tracking interaction.
var TiltCards = HookFunc{
	HookName: "tilt-cards",
	Fn: func(ctx context.Context, pageID string, region *Region) error {
		for _, n := range region.FindByClass("tilt-card") {
			SetAttr(n, "data-tilt", "")
		}
		return nil
	},
}

// LazyImages defers offscreen image loading for all images that have not
// opted out.
var LazyImages = HookFunc{
	HookName: "lazy-images",
	Fn: func(ctx context.Context, pageID string, region *Region) error {
		for _, img := range region.FindAll("img") {
			if _, ok := Attr(img, "loading"); !ok {
				SetAttr(img, "loading", "lazy")
				SetAttr(img, "decoding", "async")
			}
		}
		return nil
	},
}

// Per-page hooks

// HomeCounters initializes the animated stat counters on the home page.
var HomeCounters = HookFunc{
	HookName: "home-counters",
	Fn: func(ctx context.Context, pageID string, region *Region) error {
		for _, n := range region.FindByClass("counter") {
			if _, ok := Attr(n, "data-target"); !ok {
				// The visible text is the target when no explicit one is set.
				SetAttr(n, "data-target", strings.TrimSpace(Text(n)))
			}
			SetAttr(n, "data-count", "0")
		}
		return nil
	},
}

// FormWiring routes contact and RFQ forms to the submission endpoint and
// marks required fields for assistive technology.
func FormWiring(action string) HookFunc {
	return HookFunc{
		HookName: "form-wiring",
		Fn: func(ctx context.Context, pageID string, region *Region) error {
			for _, form := range region.FindAll("form") {
				SetAttr(form, "method", "post")
				if _, ok := Attr(form, "action"); !ok {
					SetAttr(form, "action", action)
				}
			}
			for _, tag := range []string{"input", "textarea", "select"} {
				for _, field := range region.FindAll(tag) {
					if _, ok := Attr(field, "required"); ok {
						SetAttr(field, "aria-required", "true")
					}
				}
			}
			return nil
		},
	}
}

// StockSeries is one quarter of share-price data for the investors chart.
type StockSeries struct {
	Quarter string  `json:"quarter"`
	Price   float64 `json:"price"`
}

// InvestorChart embeds the chart bootstrap data on the investors page. The
// drawing itself happens client-side; the hook only supplies the series.
func InvestorChart(series []StockSeries) HookFunc {
	return HookFunc{
		HookName: "investor-chart",
		Fn: func(ctx context.Context, pageID string, region *Region) error {
			targets := region.FindByClass("stock-chart")
			if len(targets) == 0 {
				return nil
			}

			data, err := json.Marshal(series)
			if err != nil {
				return err
			}
			for _, n := range targets {
				SetAttr(n, "data-series", string(data))
			}
			return nil
		},
	}
}

// DefaultStockSeries is the sample quarterly series shipped with the site.
func DefaultStockSeries() []StockSeries {
	return []StockSeries{
		{Quarter: "Q1", Price: 18.40},
		{Quarter: "Q2", Price: 19.10},
		{Quarter: "Q3", Price: 21.75},
		{Quarter: "Q4", Price: 20.90},
	}
}

// NewsFilters annotates the news filter controls with their target category
// and records the article count per category.
var NewsFilters = HookFunc{
	HookName: "news-filters",
	Fn: func(ctx context.Context, pageID string, region *Region) error {
		counts := make(map[string]int)
		for _, article := range region.FindByClass("news-item") {
			category, _ := Attr(article, "data-category")
			counts[category]++
		}

		for _, btn := range region.FindByClass("news-filter") {
			category, ok := Attr(btn, "data-filter")
			if !ok {
				category = strings.ToLower(strings.TrimSpace(Text(btn)))
				SetAttr(btn, "data-filter", category)
			}
			SetAttr(btn, "data-count", fmt.Sprintf("%d", counts[category]))
		}
		return nil
	},
}

// CareersOpenings numbers the job opening cards for the staggered list
// animation.
var CareersOpenings = HookFunc{
	HookName: "careers-openings",
	Fn: func(ctx context.Context, pageID string, region *Region) error {
		for i, n := range region.FindByClass("opening") {
			SetAttr(n, "data-index", fmt.Sprintf("%d", i))
			AddClass(n, "animate-on-load")
		}
		return nil
	},
}

// splitLetters replaces a node's text children with per-letter spans.
func splitLetters(n *html.Node) {
	text := strings.TrimSpace(Text(n))
	if text == "" {
		return
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}

	index := 0
	for _, r := range text {
		span := &html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
			Attr: []html.Attribute{
				{Key: "class", Val: "kinetic-letter"},
				{Key: "style", Val: fmt.Sprintf("--letter-index:%d", index)},
			},
		}
		letter := r
		if letter == ' ' {
			letter = ' '
		}
		span.AppendChild(&html.Node{Type: html.TextNode, Data: string(letter)})
		n.AppendChild(span)
		index++
	}
}
