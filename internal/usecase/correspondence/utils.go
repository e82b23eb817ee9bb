package correspondence

import "strconv"

func cacheStateKey(correspondenceID uint64) string {
	return "correspondence_state:" + strconv.FormatUint(correspondenceID, 10)
}

func cachePositionSearchKey(term string, limit int) string {
	return "position_search:" + term + ":" + strconv.Itoa(limit)
}
