package cache

// Cache keys. Every view builds its key here so equal inputs always map to
// the same persisted slot.

func KeyRooms() string                  { return "rooms" }
func KeyRoomTickets(room string) string { return "tickets:room:" + room }
func KeyTickets(start, end string) string {
	if start == "" && end == "" {
		return "tickets:all"
	}
	return "tickets:all:" + start + ":" + end
}
func KeyParking() string { return "parking_kanban_data" }

// timestampKey is the companion slot holding the epoch-millis write time.
func timestampKey(key string) string { return key + "_timestamp" }
