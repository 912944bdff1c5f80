package core

// ComputeBalance derives the balance of a materialized list: the sum of
// income amounts minus the sum of expense amounts. It is a pure function
// of the list and independent of delivery order; an empty list yields 0.
func ComputeBalance(records []Record) Money {
	var cents int64
	for _, r := range records {
		if r.Kind == Income {
			cents += r.Amount.Cents
		} else {
			cents -= r.Amount.Cents
		}
	}
	return Money{Cents: cents}
}
