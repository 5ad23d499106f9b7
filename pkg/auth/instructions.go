package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowAppPasswordGuide explains how to create a Bluesky app password
func ShowAppPasswordGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "BLUESKY APP PASSWORD")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The bot logs in with an app password rather than your main password.")
	fmt.Fprintln(w, "App passwords can post on your behalf but cannot change account settings,")
	fmt.Fprintln(w, "and can be revoked at any time.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Open https://bsky.app and sign in")
	fmt.Fprintln(w, "  2. Go to Settings > Privacy and security > App passwords")
	fmt.Fprintln(w, "  3. Choose 'Add App Password' and give it a name such as 'bskybot'")
	fmt.Fprintln(w, "  4. Copy the generated password (xxxx-xxxx-xxxx-xxxx); it is shown once")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Your identifier is your handle (name.bsky.social), a custom domain")
	fmt.Fprintln(w, "handle, or the email address of the account.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}

// ShowQuickGuide prints a one-line reminder
func ShowQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "Create an app password at bsky.app: Settings > Privacy and security > App passwords")
}
