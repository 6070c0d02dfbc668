package render

import (
	"context"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/kattalitextile/sitekit/internal/errors"
	"github.com/kattalitextile/sitekit/internal/logging"
)

// Sequencer performs the three-phase content swap: fade out over half the
// configured duration, replace synchronously, fade back in over the second
// half. After the swap it staggers entrance animations and moves focus to
// the first heading of the new content.
type Sequencer struct {
	duration time.Duration
	stagger  time.Duration
	logger   logging.Logger
}

// NewSequencer creates a transition sequencer. A zero duration disables the
// timed phases (reduced motion); the swap, animation triggers, and focus
// handling still run.
func NewSequencer(duration, stagger time.Duration, logger logging.Logger) *Sequencer {
	return &Sequencer{
		duration: duration,
		stagger:  stagger,
		logger:   logger.WithComponent("render"),
	}
}

// Swap runs the full transition sequence against the surface.
func (s *Sequencer) Swap(ctx context.Context, surface Surface, markup string) error {
	if err := surface.BeginTransition(ctx); err != nil {
		return errors.NewRenderError("E_FADE_OUT", "beginning transition", err)
	}
	if err := s.wait(ctx, s.duration/2); err != nil {
		return errors.NewRenderError("E_FADE_OUT", "transition interrupted", err)
	}

	surface.Replace(markup)

	if err := surface.EndTransition(ctx); err != nil {
		return errors.NewRenderError("E_FADE_IN", "ending transition", err)
	}
	if err := s.wait(ctx, s.duration/2); err != nil {
		return errors.NewRenderError("E_FADE_IN", "transition interrupted", err)
	}

	s.animateOnLoad(ctx, surface, markup)

	if heading := FirstHeading(markup); heading != "" {
		surface.FocusHeading(heading)
	}

	s.logger.Debug(ctx, "content swapped", "bytes", len(markup))

	return nil
}

// animateOnLoad triggers the entrance animation for each marked element with
// a per-element stagger.
func (s *Sequencer) animateOnLoad(ctx context.Context, surface Surface, markup string) {
	count := countAnimated(markup)
	for i := 0; i < count; i++ {
		if i > 0 {
			if err := s.wait(ctx, s.stagger); err != nil {
				return
			}
		}
		surface.AnimateOnLoad(i)
	}
}

func (s *Sequencer) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FirstHeading returns the text of the first h1-h3 element in the markup, or
// an empty string if the markup has none or does not parse.
func FirstHeading(markup string) string {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var heading string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3":
				heading = strings.TrimSpace(textContent(n))
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)

	return heading
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// countAnimated counts elements marked for the entrance animation.
func countAnimated(markup string) int {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return 0
	}

	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "class" && strings.Contains(attr.Val, "animate-on-load") {
					count++
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return count
}
