package classify

import (
	"time"

	"instacord/internal/constants"
	"instacord/internal/models"
)

const displayTimeLayout = "Jan 2, 2006 3:04:05 PM"

// ResolveTimestamp disambiguates a raw item timestamp. The source emits
// timestamps in more than one unit inconsistently: the value is first
// read as milliseconds since epoch, and if the resulting year is not
// plausible it is reinterpreted divided by 1000 (a finer-grained unit).
// ok is false when neither reading lands in the plausible range.
func ResolveTimestamp(item *models.RawItem) (t time.Time, ok bool) {
	raw, valid := item.TimestampValue()
	if !valid {
		return time.Time{}, false
	}

	if t, ok = plausible(raw); ok {
		return t, true
	}
	return plausible(raw / 1000)
}

func plausible(ms float64) (time.Time, bool) {
	t := time.UnixMilli(int64(ms))
	year := t.Year()
	if year < constants.MinPlausibleYear || year > constants.MaxPlausibleYear {
		return time.Time{}, false
	}
	return t, true
}

// AttachTimestamp adds the resolved timestamp as a labeled field on the
// rendering, or an explicit unavailable label. It never fails.
func AttachTimestamp(msg *models.RenderableMessage, item *models.RawItem) {
	if _, valid := item.TimestampValue(); !valid {
		msg.AddField("Timestamp", "No timestamp available", true)
		return
	}

	t, ok := ResolveTimestamp(item)
	if !ok {
		msg.AddField("Timestamp", "Unable to determine exact time", true)
		return
	}

	name := "\U0001F4E5 Received at"
	if item.IsSentByViewer {
		name = "\U0001F4E4 Sent at"
	}
	msg.AddField(name, t.Format(displayTimeLayout), true)
}
