// Package dispatch ties the catalog, selection engine, caption composer and
// image resolver together into one send cycle.
package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"offerbot/helpers"
	"offerbot/internal/caption"
	"offerbot/internal/catalog"
	"offerbot/internal/imageref"
	"offerbot/internal/selection"
	"offerbot/logger"
	"offerbot/services/publisher"
	"offerbot/services/sender"
)

// Store loads and persists the catalog file.
type Store interface {
	Load() (catalog.Catalog, error)
	Save(catalog.Catalog) error
}

// FetchFunc downloads a URL and returns body bytes plus content type.
type FetchFunc func(url string) ([]byte, string, error)

// Outcome is the event published after every cycle.
type Outcome struct {
	Result      string    `json:"result"` // sent_photo | sent_text | no_offers | failed
	Source      string    `json:"source,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	ChatID      string    `json:"chat_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

// Dispatcher runs one dispatch cycle at a time. At most one message is ever
// sent per cycle.
type Dispatcher struct {
	store  Store
	engine *selection.Engine
	sender sender.Sender
	pub    publisher.Publisher
	chatID string
	fetch  FetchFunc
	log    *logger.Logger
}

// NewDispatcher creates a dispatcher bound to one destination chat.
func NewDispatcher(store Store, engine *selection.Engine, snd sender.Sender, pub publisher.Publisher, chatID string) *Dispatcher {
	return &Dispatcher{
		store:  store,
		engine: engine,
		sender: snd,
		pub:    pub,
		chatID: chatID,
		fetch:  helpers.FetchBytes,
		log:    logger.ForDispatcher(),
	}
}

// RunCycle executes one full dispatch cycle: reload the catalog, draw an
// offer, compose the caption, walk the image variant ladder and send,
// degrading to text-only when no variant delivers image bytes. Every failure
// is local to the cycle; the next scheduled cycle is the retry mechanism.
func (d *Dispatcher) RunCycle(ctx context.Context) {
	cat, err := d.store.Load()
	if err != nil {
		d.log.Warn().Err(err).Msg("catalog unreadable, treating as empty")
	}
	if cat.Dirty {
		if err := d.store.Save(cat); err != nil {
			d.log.Warn().Err(err).Msg("failed to normalize legacy catalog shape")
		} else {
			d.log.Debug().Msg("normalized legacy catalog shape")
		}
		cat.Dirty = false
	}

	pick, err := d.engine.SelectAndConsume(&cat)
	if err != nil {
		// The draw is still valid; losing the save-back only risks showing
		// the same priority offer again next cycle
		d.log.Error().Err(err).Msg("failed to persist catalog after draw")
	}
	if pick == nil {
		d.log.Info().Msg("no offers available")
		d.publish(ctx, Outcome{Result: "no_offers", SentAt: time.Now()})
		return
	}

	fp := selection.Fingerprint(pick.Offer)
	text := caption.Compose(pick.Offer)

	ref := pick.Offer.ImageRef()
	if ref == "" {
		d.sendTextOnly(ctx, text, pick, fp)
		return
	}

	norm := imageref.Normalize(ref)
	if !norm.OK {
		d.log.Warn().
			Str("reason", norm.Reason).
			Str("ref", ref).
			Msg("ignoring invalid image reference")
		d.sendTextOnly(ctx, text, pick, fp)
		return
	}

	for i, candidate := range imageref.ExpandVariants(norm.URL) {
		sentURL, ok := d.tryImage(ctx, candidate, text, i)
		if ok {
			d.publish(ctx, Outcome{
				Result:      "sent_photo",
				Source:      string(pick.Source),
				Fingerprint: fp,
				ChatID:      d.chatID,
				ImageURL:    sentURL,
				SentAt:      time.Now(),
			})
			return
		}
	}

	d.log.Warn().Str("ref", ref).Msg("all image variants failed, falling back to text")
	d.sendTextOnly(ctx, text, pick, fp)
}

// tryImage fetches one variant and sends it. When the host answers with its
// HTML viewer page instead of image bytes, the direct URL advertised in the
// page metadata gets one extra fetch. Returns the URL that was actually sent.
func (d *Dispatcher) tryImage(ctx context.Context, url, text string, attempt int) (string, bool) {
	data, contentType, err := d.fetch(url)
	if err != nil {
		d.log.Warn().Err(err).Int("attempt", attempt+1).Str("url", url).Msg("image fetch failed")
		return "", false
	}

	if imageref.LooksLikeHTML(contentType, data) {
		direct, ok := imageref.ExtractDirectImage(data, contentType)
		if !ok {
			d.log.Warn().Int("attempt", attempt+1).Str("url", url).Msg("variant served a page without a direct image")
			return "", false
		}
		d.log.Debug().Str("url", url).Str("direct", direct).Msg("recovered direct image from page metadata")
		url = direct
		data, contentType, err = d.fetch(direct)
		if err != nil {
			d.log.Warn().Err(err).Str("url", direct).Msg("recovered image fetch failed")
			return "", false
		}
		if imageref.LooksLikeHTML(contentType, data) {
			return "", false
		}
	}

	mimeType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = imageref.MIMEForURL(url)
	}

	if err := d.sender.SendImage(ctx, d.chatID, data, mimeType, imageref.Filename(url), text); err != nil {
		d.log.Warn().Err(err).Int("attempt", attempt+1).Str("url", url).Msg("image send failed")
		return "", false
	}

	d.log.Info().Int("attempt", attempt+1).Str("url", url).Msg("photo sent")
	return url, true
}

// sendTextOnly delivers the caption without an attachment.
func (d *Dispatcher) sendTextOnly(ctx context.Context, text string, pick *selection.Pick, fp string) {
	outcome := Outcome{
		Source:      string(pick.Source),
		Fingerprint: fp,
		ChatID:      d.chatID,
		SentAt:      time.Now(),
	}

	if err := d.sender.SendText(ctx, d.chatID, text); err != nil {
		d.log.Error().
			Err(err).
			Str("source", string(pick.Source)).
			Msg("text send failed")
		outcome.Result = "failed"
		d.publish(ctx, outcome)
		return
	}

	d.log.Info().Str("source", string(pick.Source)).Msg("text message sent")
	outcome.Result = "sent_text"
	d.publish(ctx, outcome)
}

// publish emits the cycle outcome; publisher failures are never fatal.
func (d *Dispatcher) publish(ctx context.Context, outcome Outcome) {
	data, err := json.Marshal(outcome)
	if err != nil {
		d.log.Warn().Err(err).Msg("failed to marshal outcome")
		return
	}
	if err := d.pub.Publish(ctx, data); err != nil {
		d.log.Warn().Err(err).Msg("failed to publish outcome")
	}
}
