package quiz

import "github.com/pkg/errors"

// Deck is the authored, ordered list of items. Mutators return a new Deck so a failed
// save can leave the previous one in place.
type Deck []Item

func (d Deck) Clone() Deck {
	out := make(Deck, len(d))
	for idx, item := range d {
		out[idx] = item.Clone()
	}
	return out
}

func (d Deck) At(index int) (Item, error) {
	if index < 0 || index >= len(d) {
		return Item{}, errors.Wrapf(ErrItemNotFound, "index %d", index)
	}
	return d[index].Clone(), nil
}

func (d Deck) IndexOf(id string) int {
	for idx, item := range d {
		if item.ID == id {
			return idx
		}
	}
	return -1
}

func (d Deck) Append(items ...Item) (Deck, error) {
	out := d.Clone()
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		out = append(out, item.Clone())
	}
	return out, nil
}

// Replace swaps the item at index, keeping the original item's ID.
func (d Deck) Replace(index int, item Item) (Deck, error) {
	existing, err := d.At(index)
	if err != nil {
		return nil, err
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	out := d.Clone()
	item = item.Clone()
	item.ID = existing.ID
	out[index] = item
	return out, nil
}

func (d Deck) Remove(index int) (Deck, error) {
	if _, err := d.At(index); err != nil {
		return nil, err
	}
	out := make(Deck, 0, len(d)-1)
	for idx, item := range d {
		if idx != index {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}
