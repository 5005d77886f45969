package realtime

// MediaBridge implements the player's media capability by forwarding commands
// over the hub to the client's audio element. Commands are fire-and-forget;
// the actual playing/paused state comes back as media notifications over
// HTTP, never from the command itself.
type MediaBridge struct {
	hub    *Hub
	userID string
}

func NewMediaBridge(hub *Hub, userID string) *MediaBridge {
	return &MediaBridge{hub: hub, userID: userID}
}

func (b *MediaBridge) command(action string, payload map[string]any) {
	event := map[string]any{
		"type":    "player.command",
		"payload": map[string]any{"action": action},
	}
	for key, value := range payload {
		event["payload"].(map[string]any)[key] = value
	}
	b.hub.Publish(b.userID, event)
}

func (b *MediaBridge) SetSource(url string) {
	b.command("setSource", map[string]any{"url": url})
}

func (b *MediaBridge) Unload() {
	b.command("unload", nil)
}

func (b *MediaBridge) Load() {
	b.command("load", nil)
}

// Play never reports rejection itself: autoplay refusal happens in the
// browser and arrives back as a pause notification.
func (b *MediaBridge) Play() error {
	b.command("play", nil)
	return nil
}

func (b *MediaBridge) Pause() {
	b.command("pause", nil)
}

func (b *MediaBridge) SetCurrentTime(seconds float64) {
	b.command("setCurrentTime", map[string]any{"seconds": seconds})
}
