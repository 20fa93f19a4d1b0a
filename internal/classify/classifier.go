package classify

import (
	"fmt"
	"strings"

	"instacord/internal/constants"
	"instacord/internal/models"
)

// Result is the outcome of classifying one raw item. Degraded marks
// renderings produced by a fallback arm after extraction went wrong,
// so callers and tests can tell the two paths apart.
type Result struct {
	Message  models.RenderableMessage
	Degraded bool
}

// Classify maps one raw inbox item into a destination-ready rendering.
// It is total: unrecognized types and broken payloads always yield a
// usable title and body, never an error.
func Classify(item *models.RawItem, sender string, pending bool) Result {
	msg := models.RenderableMessage{
		Color:  models.ColorReceived,
		Footer: "Received via Instagram DM",
	}
	if item.IsSentByViewer {
		msg.Color = models.ColorSent
		msg.Footer = "Sent via Instagram DM"
	}
	if pending {
		msg.Footer += " (Pending)"
	}

	degraded := false
	switch item.ItemType {
	case models.ItemTypeText:
		classifyText(&msg, item, sender, pending)
	case models.ItemTypeMediaShare:
		classifyMediaShare(&msg, item, sender, pending)
	case models.ItemTypeClip:
		degraded = classifyClip(&msg, item, sender, pending)
	case models.ItemTypeMedia:
		classifyMedia(&msg, item, sender, pending)
	case models.ItemTypeStoryShare:
		classifyStoryShare(&msg, item, sender, pending)
	case models.ItemTypePlaceholder:
		classifyPlaceholder(&msg, item, sender, pending)
	case models.ItemTypeLike, models.ItemTypeActionLog:
		classifyActivity(&msg, item, sender)
	default:
		classifyUnknown(&msg, item, sender, pending)
	}

	return Result{Message: msg, Degraded: degraded}
}

func direction(item *models.RawItem, sent, received string) string {
	if item.IsSentByViewer {
		return sent
	}
	return received
}

func pendingSuffix(pending bool) string {
	if pending {
		return " (Pending)"
	}
	return ""
}

func classifyText(msg *models.RenderableMessage, item *models.RawItem, sender string, pending bool) {
	msg.Title = fmt.Sprintf("%s %s%s", direction(item, "You to", "From"), sender, pendingSuffix(pending))
	msg.Body = item.Text
	if msg.Body == "" {
		msg.Body = "(No text)"
	}
}

func classifyMediaShare(msg *models.RenderableMessage, item *models.RawItem, sender string, pending bool) {
	mediaTitle := "Shared Post"
	var link, thumbnail, caption string

	if share := item.MediaShare; share != nil {
		if share.Code != "" {
			link = fmt.Sprintf("https://www.instagram.com/p/%s/", share.Code)
		}
		if share.Caption != nil && share.Caption.Text != "" {
			caption = truncateCaption(share.Caption.Text)
		}
		thumbnail = firstCandidate(share.ImageVersions)
		if share.User != nil && share.User.Username != "" {
			mediaTitle = fmt.Sprintf("Post from @%s", share.User.Username)
		}
	}

	msg.Title = fmt.Sprintf("%s %s: %s%s", direction(item, "You shared with", "Shared by"), sender, mediaTitle, pendingSuffix(pending))

	body := item.Text
	if body == "" {
		body = "(No message)"
	}
	if caption != "" {
		body += fmt.Sprintf("\n\n*\"%s\"*", caption)
	}
	if link != "" {
		body += fmt.Sprintf("\n\n[View on Instagram](%s)", link)
	}
	msg.Body = body
	msg.ImageURL = thumbnail
}

// classifyClip resolves a shared reel through a chain of increasingly
// desperate payload locations. It reports whether the degraded arm ran.
func classifyClip(msg *models.RenderableMessage, item *models.RawItem, sender string, pending bool) (degraded bool) {
	defer func() {
		if r := recover(); r != nil {
			degraded = true
			msg.Title = fmt.Sprintf("%s %s: Instagram Reel%s", direction(item, "You shared with", "Shared by"), sender, pendingSuffix(pending))
			msg.Body = "Error processing Instagram reel"
			msg.ImageURL = ""
		}
	}()

	var link, thumbnail, caption string
	owner := "Instagram User"

	switch {
	case item.Clip != nil && item.Clip.Clip != nil:
		clip := item.Clip.Clip
		if clip.Code != "" {
			link = fmt.Sprintf("https://www.instagram.com/reel/%s/", clip.Code)
		}
		if clip.Caption != nil {
			caption = clip.Caption.Text
		}
		if clip.User != nil && clip.User.Username != "" {
			owner = clip.User.Username
		}
		thumbnail = firstCandidate(clip.ImageVersions)
	case item.Clip != nil && item.Clip.Code != "":
		link = fmt.Sprintf("https://www.instagram.com/reel/%s/", item.Clip.Code)
	case item.MediaID != "":
		link = fmt.Sprintf("https://www.instagram.com/reel/%s/", item.MediaID)
	default:
		if id := leadingSegment(item.ItemID); id != "" {
			link = fmt.Sprintf("https://www.instagram.com/reel/%s/", id)
		}
	}

	msg.Title = fmt.Sprintf("%s %s: Instagram Reel from @%s%s", direction(item, "You shared with", "Shared by"), sender, owner, pendingSuffix(pending))

	body := item.Text
	if body == "" {
		body = "(No message)"
	}
	if caption != "" && caption != item.Text {
		body += fmt.Sprintf("\n\n*\"%s\"*", truncateCaption(caption))
	}
	if link != "" {
		body += fmt.Sprintf("\n\n[Watch on Instagram](%s)", link)
	} else {
		body += "\n\n(Could not extract Instagram link)"
	}
	msg.Body = body
	msg.ImageURL = thumbnail
	return false
}

func classifyMedia(msg *models.RenderableMessage, item *models.RawItem, sender string, pending bool) {
	var link, thumbnail string

	if item.VisualMedia != nil && item.VisualMedia.Media != nil {
		media := item.VisualMedia.Media
		if media.Code != "" {
			link = fmt.Sprintf("https://www.instagram.com/p/%s/", media.Code)
		} else if media.ID != "" {
			link = fmt.Sprintf("https://www.instagram.com/p/%s/", media.ID)
		}
		thumbnail = firstCandidate(media.ImageVersions)
	} else if item.ItemID != "" {
		link = fmt.Sprintf("Media content (ID: %s)", leadingSegment(item.ItemID))
	}

	msg.Title = fmt.Sprintf("%s %s: Photo/Video%s", direction(item, "You sent to", "From"), sender, pendingSuffix(pending))

	body := item.Text
	if body == "" {
		body = "(No caption)"
	}
	if link != "" {
		body += fmt.Sprintf("\n\n[View on Instagram](%s)", link)
	}
	msg.Body = body
	msg.ImageURL = thumbnail
}

func classifyStoryShare(msg *models.RenderableMessage, item *models.RawItem, sender string, pending bool) {
	dir := direction(item, "You shared with", "Shared by")
	body := item.Text

	if item.StoryShare != nil && item.StoryShare.Media != nil {
		story := item.StoryShare.Media
		owner := "Instagram User"
		if story.User != nil && story.User.Username != "" {
			owner = story.User.Username
		}
		body += fmt.Sprintf(
			"\n\nShared a story from @%s\n[View Profile](https://www.instagram.com/%s/) | [View Stories](https://www.instagram.com/stories/%s/)",
			owner, owner, owner,
		)
		msg.ImageURL = firstCandidate(story.ImageVersions)
		msg.Title = fmt.Sprintf("%s %s: Instagram Story from @%s%s", dir, sender, owner, pendingSuffix(pending))
	} else {
		msg.Title = fmt.Sprintf("%s %s: Instagram Story%s", dir, sender, pendingSuffix(pending))
	}

	msg.Body = body
	if msg.Body == "" {
		msg.Body = "(No message)"
	}
}

func classifyPlaceholder(msg *models.RenderableMessage, item *models.RawItem, sender string, pending bool) {
	vanishing := item.IsDisappearing
	if !vanishing && item.Placeholder != nil {
		// The app-update prompt is how the source flags vanishing-mode
		// content it refuses to expose to third-party sessions.
		if item.Placeholder.Title == "Use Latest App" &&
			strings.Contains(item.Placeholder.Message, "Use the latest version of the Instagram app") {
			vanishing = true
		}
	}

	dir := direction(item, "You sent to", "From")
	if vanishing {
		msg.Title = fmt.Sprintf("%s %s: Vanishing Mode Message%s", dir, sender, pendingSuffix(pending))
		msg.Body = "This message was sent in vanishing mode. " +
			"Instagram doesn't allow third-party apps to see the content of vanishing messages."
	} else {
		msg.Title = fmt.Sprintf("%s %s: Placeholder Message%s", dir, sender, pendingSuffix(pending))
		msg.Body = "This message is still loading in Instagram. " +
			"It may contain media or other content that will appear soon."
	}
}

func classifyActivity(msg *models.RenderableMessage, item *models.RawItem, sender string) {
	who := sender
	if item.IsSentByViewer {
		who = "You"
	}
	msg.Title = fmt.Sprintf("%s sent an activity: %s", who, item.ItemType)
	msg.Body = fmt.Sprintf("Activity type: %s", item.ItemType)
}

func classifyUnknown(msg *models.RenderableMessage, item *models.RawItem, sender string, pending bool) {
	msg.Title = fmt.Sprintf("%s %s%s", direction(item, "You to", "From"), sender, pendingSuffix(pending))
	msg.Body = fmt.Sprintf("Message type: %s", item.ItemType)
}

func firstCandidate(iv *models.ImageVersions) string {
	if iv == nil || len(iv.Candidates) == 0 {
		return ""
	}
	return iv.Candidates[0].URL
}

// leadingSegment returns the portion of an item identifier before its
// first underscore, which doubles as a media identifier upstream.
func leadingSegment(itemID string) string {
	if itemID == "" {
		return ""
	}
	if idx := strings.IndexByte(itemID, '_'); idx >= 0 {
		return itemID[:idx]
	}
	return itemID
}

func truncateCaption(s string) string {
	runes := []rune(s)
	if len(runes) <= constants.MaxCaptionLength {
		return s
	}
	return string(runes[:constants.MaxCaptionLength]) + "..."
}
