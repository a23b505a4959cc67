package dao

import "strings"

type Cake struct {
	ID          int        `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Image       string     `db:"image" json:"image"`
	Sizes       []CakeSize `db:"-" json:"sizes"`
}

type CakeSize struct {
	ID     int    `db:"id" json:"id"`
	CakeID int    `db:"cake_id" json:"cake_id"`
	Size   string `db:"size" json:"size"`
	Price  int    `db:"price" json:"price"`
	Stock  int    `db:"stock" json:"stock"`
}

// SizeDiff is the set of writes that turns the stored sizes of a cake into
// the submitted ones. Sizes are matched by label.
type SizeDiff struct {
	Insert []CakeSize
	Update []CakeSize
	Delete []int
}

func (d SizeDiff) Empty() bool {
	return len(d.Insert) == 0 && len(d.Update) == 0 && len(d.Delete) == 0
}

func DiffSizes(existing, desired []CakeSize) SizeDiff {
	byLabel := make(map[string]CakeSize, len(existing))
	for _, s := range existing {
		byLabel[s.Size] = s
	}

	var diff SizeDiff
	kept := make(map[string]bool, len(desired))
	for _, want := range desired {
		kept[want.Size] = true
		have, ok := byLabel[want.Size]
		if !ok {
			diff.Insert = append(diff.Insert, want)
			continue
		}
		if have.Price != want.Price || have.Stock != want.Stock {
			want.ID = have.ID
			want.CakeID = have.CakeID
			diff.Update = append(diff.Update, want)
		}
	}
	for _, s := range existing {
		if !kept[s.Size] {
			diff.Delete = append(diff.Delete, s.ID)
		}
	}
	return diff
}

// NormalizeLabel trims a size label; empty labels are dropped by callers.
func NormalizeLabel(s string) string { return strings.TrimSpace(s) }
