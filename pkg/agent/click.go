package agent

// ClickData is the data blob attached to a displayed push notification,
// mirroring the payload the server builds for each push send.
type ClickData struct {
	NotificationID uint   `json:"notificationId"`
	Type           string `json:"type"`
	RelatedBlog    string `json:"relatedBlog,omitempty"`
	URL            string `json:"url,omitempty"`
}

// Window is an open application window the click handler can reuse
type Window interface {
	URL() string
	Focus() error
	Navigate(url string) error
}

// WindowOpener opens a brand new application window at the given URL
type WindowOpener func(url string) error

// TargetURL resolves where a notification click should land. The attached
// URL wins; otherwise a related blog deep-links to its page, and everything
// else falls back to the notification list.
func TargetURL(data ClickData) string {
	if data.URL != "" {
		return data.URL
	}
	if data.RelatedBlog != "" {
		return "/blogs/" + data.RelatedBlog
	}
	return "/notifications"
}

// HandleClick applies the window-reuse policy for a notification click:
// focus and navigate an already-open window when one exists, otherwise open
// a new one. This avoids piling up duplicate tabs.
func HandleClick(data ClickData, windows []Window, open WindowOpener) error {
	url := TargetURL(data)
	for _, w := range windows {
		if err := w.Focus(); err != nil {
			continue
		}
		if w.URL() == url {
			return nil
		}
		return w.Navigate(url)
	}
	return open(url)
}
