package bridge

import (
	"strconv"
	"strings"
)

// ExpandIDs expands a raw transaction ID cell into integer IDs. Ranges like
// "12-15" expand to every integer in the range, comma-separated parts expand
// independently, and anything unparsable contributes nothing. A nil result
// means the transaction carries no usable ID.
func ExpandIDs(raw string) []int {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, errStart := strconv.Atoi(strings.TrimSpace(bounds[0]))
			end, errEnd := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if errStart != nil || errEnd != nil {
				continue
			}
			for id := start; id <= end; id++ {
				ids = append(ids, id)
			}
			continue
		}
		if id, err := strconv.Atoi(part); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
