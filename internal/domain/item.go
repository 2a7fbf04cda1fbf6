package domain

// Item is the resolved result for a single requested key.
//
// Found is false when the fetch for the key failed. Value is empty in that case.
type Item struct {
	Key   string
	Value string
	Found bool
}
