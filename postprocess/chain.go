package postprocess

import "context"

// Chain is the fixed post-processing order: replacement, then enhancement.
// A zero Chain passes text through unchanged.
type Chain struct {
	Replacer       *Replacer
	ReplaceEnabled bool
	Enhancer       Enhancer
	EnhanceEnabled bool
}

// Replace applies the replacement rules when enabled.
func (c Chain) Replace(text string) string {
	if !c.ReplaceEnabled {
		return text
	}
	return c.Replacer.Apply(text)
}

// WantsEnhancement reports whether an enhancer is configured and enabled.
func (c Chain) WantsEnhancement() bool {
	return c.EnhanceEnabled && c.Enhancer != nil
}

// Enhance runs the enhancer. Callers check WantsEnhancement first.
func (c Chain) Enhance(ctx context.Context, text string) (string, error) {
	return c.Enhancer.Enhance(ctx, text)
}
