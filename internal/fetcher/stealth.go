package fetcher

import (
	"fmt"
	"math/rand"
)

// StealthProfile describes the desktop browser the headless fetcher
// pretends to be on search result pages.
type StealthProfile struct {
	ViewportWidth       int
	ViewportHeight      int
	Language            string
	Platform            string
	HardwareConcurrency int
}

// DefaultStealthProfile picks a common desktop viewport and platform.
func DefaultStealthProfile() *StealthProfile {
	viewports := []struct{ w, h int }{
		{1920, 1080}, {1366, 768}, {1536, 864}, {1440, 900},
	}
	vp := viewports[rand.Intn(len(viewports))]
	platforms := []string{"Win32", "MacIntel", "Linux x86_64"}

	return &StealthProfile{
		ViewportWidth:       vp.w,
		ViewportHeight:      vp.h,
		Language:            "en-US",
		Platform:            platforms[rand.Intn(len(platforms))],
		HardwareConcurrency: 4 + rand.Intn(9),
	}
}

// WindowSize formats the viewport for the Chromium window-size flag.
func (p *StealthProfile) WindowSize() string {
	return fmt.Sprintf("%d,%d", p.ViewportWidth, p.ViewportHeight)
}

// NavigatorJS overrides the navigator fields go-rod/stealth leaves alone.
// It runs before any page script.
func (p *StealthProfile) NavigatorJS() string {
	return fmt.Sprintf(`
Object.defineProperty(navigator, 'platform', { get: () => '%s' });
Object.defineProperty(navigator, 'language', { get: () => '%s' });
Object.defineProperty(navigator, 'languages', { get: () => ['%s', 'en'] });
Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => %d });
`, p.Platform, p.Language, p.Language, p.HardwareConcurrency)
}
