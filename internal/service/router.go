package service

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"instacord/internal/metrics"

	"github.com/sirupsen/logrus"
)

var channelNameSanitizer = regexp.MustCompile(`[^a-z0-9_-]`)

// ChannelDirectory is the destination-side surface the router needs.
type ChannelDirectory interface {
	FindChannel(guildID, name string) (string, error)
	CreateChannel(guildID, categoryID, name, topic string) (string, error)
}

// ChannelRouter maps a sender identity to a destination channel,
// creating one on first contact. The cache is process-wide and never
// invalidated: a handle that goes stale externally keeps being
// returned for the rest of the process lifetime.
type ChannelRouter struct {
	directory  ChannelDirectory
	guildID    string
	categoryID string
	logger     *logrus.Logger

	mu    sync.Mutex
	cache map[string]string // lowercased sender -> channel ID
}

// NewChannelRouter creates a router. An empty guildID disables
// resolution entirely; every lookup then misses without side effects.
func NewChannelRouter(directory ChannelDirectory, guildID, categoryID string, logger *logrus.Logger) *ChannelRouter {
	return &ChannelRouter{
		directory:  directory,
		guildID:    guildID,
		categoryID: categoryID,
		logger:     logger,
		cache:      make(map[string]string),
	}
}

// Resolve returns the channel ID for a sender, or empty when no
// channel can be found or created. Failures are logged and absorbed;
// the caller skips delivery for that sender.
func (r *ChannelRouter) Resolve(sender string) string {
	key := strings.ToLower(sender)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.cache[key]; ok {
		return id
	}

	if r.guildID == "" {
		r.logger.WithField("sender", sender).Warn("Guild ID not configured, cannot route sender")
		return ""
	}

	name := ChannelName(sender)

	id, err := r.directory.FindChannel(r.guildID, name)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"sender":  sender,
			"channel": name,
		}).WithError(err).Error("Channel lookup failed")
		metrics.IncrementCounter("router_failures", nil, "channel routing failures")
		return ""
	}

	if id == "" {
		topic := fmt.Sprintf("Instagram DMs from @%s", key)
		id, err = r.directory.CreateChannel(r.guildID, r.categoryID, name, topic)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"sender":  sender,
				"channel": name,
			}).WithError(err).Error("Channel creation failed")
			metrics.IncrementCounter("router_failures", nil, "channel routing failures")
			return ""
		}
		r.logger.WithFields(logrus.Fields{
			"sender":  sender,
			"channel": name,
		}).Info("Created channel for sender")
		metrics.IncrementCounter("channels_created", nil, "channels created for first-contact senders")
	}

	r.cache[key] = id
	return id
}

// CachedRoutes returns the number of resolved sender routes.
func (r *ChannelRouter) CachedRoutes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// ChannelName derives the canonical channel name for a sender:
// lowercased, with anything outside [a-z0-9_-] replaced by hyphens.
func ChannelName(sender string) string {
	return "ig-" + channelNameSanitizer.ReplaceAllString(strings.ToLower(sender), "-")
}
