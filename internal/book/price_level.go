package book

// Entry is one order queued at a price level.
type Entry struct {
	Time     int
	Quantity int
	TraderID string
	Sequence uint64
}

// PriceLevel aggregates every resting order at one price, in queue order.
type PriceLevel struct {
	Price    int
	Quantity int
	Entries  []Entry
}

func (level *PriceLevel) push(e Entry) {
	level.Quantity += e.Quantity
	level.Entries = append(level.Entries, e)
}

func (level *PriceLevel) clone() PriceLevel {
	entries := make([]Entry, len(level.Entries))
	copy(entries, level.Entries)
	return PriceLevel{
		Price:    level.Price,
		Quantity: level.Quantity,
		Entries:  entries,
	}
}
