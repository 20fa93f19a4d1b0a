package models

import "encoding/json"

// ItemType is the fixed enumeration of direct item payload kinds.
type ItemType string

const (
	ItemTypeText        ItemType = "text"
	ItemTypeMediaShare  ItemType = "media_share"
	ItemTypeClip        ItemType = "clip"
	ItemTypeMedia       ItemType = "media"
	ItemTypeStoryShare  ItemType = "story_share"
	ItemTypeLike        ItemType = "like"
	ItemTypeActionLog   ItemType = "action_log"
	ItemTypePlaceholder ItemType = "placeholder"
)

// Caption is the caption envelope shared by post, clip and story media.
type Caption struct {
	Text string `json:"text"`
}

// MediaUser is the owner of a shared post, clip or story.
type MediaUser struct {
	Username string `json:"username"`
}

// ImageVersions holds the candidate renditions of an image, best first.
type ImageVersions struct {
	Candidates []ImageCandidate `json:"candidates"`
}

type ImageCandidate struct {
	URL string `json:"url"`
}

// SharedMedia is the common shape of an embedded post or story medium.
type SharedMedia struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	Caption       *Caption       `json:"caption"`
	User          *MediaUser     `json:"user"`
	ImageVersions *ImageVersions `json:"image_versions2"`
}

// ClipShare wraps a shared reel. The payload of interest sits one level
// down in Clip; the outer Code field is a rarely-populated alternate.
type ClipShare struct {
	Clip *SharedMedia `json:"clip"`
	Code string       `json:"code"`
}

// VisualMedia wraps a directly sent photo or video.
type VisualMedia struct {
	Media *SharedMedia `json:"media"`
}

// StoryShare wraps a shared story.
type StoryShare struct {
	Media *SharedMedia `json:"media"`
}

// Placeholder is what the source substitutes when item content is not
// available at this access level or has not materialized yet.
type Placeholder struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// RawItem is one direct item exactly as fetched from a thread feed.
// Timestamp is kept raw: the source emits it inconsistently as a number
// or a numeric string, in milliseconds or a finer unit, and the
// classifier disambiguates per item. Immutable once fetched.
type RawItem struct {
	ItemID         string       `json:"item_id"`
	ItemType       ItemType     `json:"item_type"`
	IsSentByViewer bool         `json:"is_sent_by_viewer"`
	IsDisappearing bool         `json:"is_disappearing"`
	Timestamp      json.Number  `json:"timestamp"`
	Text           string       `json:"text"`
	MediaID        string       `json:"media_id"`
	MediaShare     *SharedMedia `json:"media_share"`
	Clip           *ClipShare   `json:"clip"`
	VisualMedia    *VisualMedia `json:"visual_media"`
	StoryShare     *StoryShare  `json:"story_share"`
	Placeholder    *Placeholder `json:"placeholder"`
}

// TimestampValue coerces the raw timestamp to a number. The unit is
// still undetermined at this point; see classify.ResolveTimestamp.
func (it *RawItem) TimestampValue() (float64, bool) {
	if it.Timestamp == "" {
		return 0, false
	}
	f, err := it.Timestamp.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}
