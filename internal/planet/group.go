package planet

import "sort"

// GroupByDate partitions items by the date portion of their acquisition
// timestamp. The result maps YYYY-MM-DD to item IDs in encounter order.
// Every item lands in exactly one group; empty input yields an empty map.
func GroupByDate(features []Feature) map[string][]string {
	groups := make(map[string][]string)
	for i := range features {
		date := features[i].AcquiredDate()
		groups[date] = append(groups[date], features[i].ID)
	}
	return groups
}

// SortedDates returns the group keys in ascending date order.
// Map iteration order is unspecified; callers that submit one order per
// group use this for deterministic submission order.
func SortedDates(groups map[string][]string) []string {
	dates := make([]string, 0, len(groups))
	for date := range groups {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
