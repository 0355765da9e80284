package lif

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lifio/lif/xmlmeta"
)

// Windows FILETIME ticks are 100ns intervals counted from 1601-01-01 UTC,
// which precedes the Unix epoch by this many seconds.
const filetimeEpochDelta = 11644473600

// filetimeToTime converts a FILETIME tick count to a UTC time.
func filetimeToTime(ticks uint64) time.Time {
	sec := int64(ticks/10_000_000) - filetimeEpochDelta
	nsec := int64(ticks%10_000_000) * 100
	return time.Unix(sec, nsec).UTC()
}

// parseTimestamps extracts per-frame acquisition times from an image
// element's TimeStampList. Newer writers store the list as hexadecimal
// FILETIME words in the element text; older ones store one TimeStamp child
// per frame with HighInteger and LowInteger attributes. Returns nil when
// the element carries no timestamps.
func parseTimestamps(elem *xmlmeta.Node) []time.Time {
	list := elem.Find("TimeStampList")
	if list == nil {
		return nil
	}
	if text := strings.TrimSpace(list.Text); text != "" {
		words := strings.Fields(text)
		out := make([]time.Time, 0, len(words))
		for _, w := range words {
			ticks, err := strconv.ParseUint(w, 16, 64)
			if err != nil {
				logger.Warn("skipping unparsable timestamp word",
					zap.String("word", w))
				continue
			}
			out = append(out, filetimeToTime(ticks))
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	stamps := list.FindAll("TimeStamp")
	if len(stamps) == 0 {
		return nil
	}
	out := make([]time.Time, 0, len(stamps))
	for _, s := range stamps {
		hi, okHi := s.Attr("HighInteger")
		lo, okLo := s.Attr("LowInteger")
		if !okHi || !okLo {
			continue
		}
		h, err1 := strconv.ParseUint(hi, 10, 32)
		l, err2 := strconv.ParseUint(lo, 10, 32)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, filetimeToTime(h<<32|l))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
