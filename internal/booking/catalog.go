package booking

// defaultDurationMinutes applies when neither the caller nor the service
// catalog resolves a duration.
const defaultDurationMinutes = 60

// DefaultServices maps service names to their default duration in minutes.
// Service names are Mongolian, matching the end-user channel.
func DefaultServices() map[string]int {
	return map[string]int{
		"үс засалт":    60,
		"шүдний үзлэг": 45,
		"массаж":       90,
		"маникюр":      45,
		"педикюр":      60,
		"косметик":     120,
		"эмчилгээ":     60,
		"сэтгэл зүйч":  60,
	}
}
