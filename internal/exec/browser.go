package exec

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strings"
)

// Sentinel errors for opening links.
var (
	ErrNoLauncher = errors.New("no URL launcher available")
	ErrInvalidURL = errors.New("only http and https links can be opened")
)

// launcher is a platform URL handler and the arguments placed before the URL.
type launcher struct {
	name string
	args []string
}

// launchers lists the URL handlers tried for each GOOS, in order.
var launchers = map[string][]launcher{
	"darwin":  {{name: "open"}},
	"windows": {{name: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}},
	"linux":   {{name: "xdg-open"}, {name: "sensible-browser"}, {name: "x-www-browser"}},
}

// Browser opens links in the user's default browser.
type Browser struct {
	exec Executor
	goos string
}

// NewBrowser returns a Browser that launches the platform handler through e.
func NewBrowser(e Executor) *Browser {
	return &Browser{exec: e, goos: runtime.GOOS}
}

// Open hands link to the first available URL handler. Only absolute http and
// https links are accepted.
func (b *Browser) Open(ctx context.Context, link string) error {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, link)
	}

	l, err := b.launcher()
	if err != nil {
		return err
	}

	res, err := b.exec.Run(ctx, &RunOptions{
		Name: l.name,
		Args: append(append([]string{}, l.args...), u.String()),
	})
	if err != nil {
		stderr := ""
		if res != nil {
			stderr = strings.TrimSpace(string(res.Stderr))
		}
		if stderr != "" {
			return fmt.Errorf("run %s: %w: %s", l.name, err, stderr)
		}
		return fmt.Errorf("run %s: %w", l.name, err)
	}
	return nil
}

func (b *Browser) launcher() (launcher, error) {
	candidates := launchers[b.goos]
	if len(candidates) == 0 {
		// Other unix-likes follow the freedesktop convention.
		candidates = launchers["linux"]
	}
	for _, l := range candidates {
		if _, err := b.exec.LookPath(l.name); err == nil {
			return l, nil
		}
	}
	return launcher{}, fmt.Errorf("%w on %s", ErrNoLauncher, b.goos)
}
