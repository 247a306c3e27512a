package app

// demoSnapshot is the board shown when no snapshot file or store board is available.
var demoSnapshot = BoardSnapshot{
	Version: SnapshotVersion,
	ID:      "board-id-01",
	Title:   "Demo board",
	ColumnOrderIDs: []string{
		"column-id-01", "column-id-02", "column-id-03", "column-id-04",
	},
	Columns: []SnapshotColumn{
		{
			ID:           "column-id-01",
			Title:        "To Do",
			CardOrderIDs: []string{"card-id-01", "card-id-02", "card-id-03"},
			Cards: []SnapshotCard{
				{ID: "card-id-01", Title: "Sketch the board layout", Description: "Columns left to right, cards **top to bottom**."},
				{ID: "card-id-02", Title: "Write import docs"},
				{ID: "card-id-03", Title: "Pick a color scheme", Description: "- muted borders\n- bright focus"},
			},
		},
		{
			ID:           "column-id-02",
			Title:        "In Progress",
			CardOrderIDs: []string{"card-id-05", "card-id-04"},
			Cards: []SnapshotCard{
				{ID: "card-id-04", Title: "Mouse drag sensor"},
				{ID: "card-id-05", Title: "Collision rules", Description: "Pointer first, then `closest corners`."},
			},
		},
		{
			ID:           "column-id-03",
			Title:        "Review",
			CardOrderIDs: []string{"card-id-06"},
			Cards: []SnapshotCard{
				{ID: "card-id-06", Title: "Placeholder handling"},
			},
		},
		{
			ID:           "column-id-04",
			Title:        "Done",
			CardOrderIDs: []string{},
			Cards:        []SnapshotCard{},
		},
	},
}

// DemoSnapshot returns a copy of the built-in demo board document.
func DemoSnapshot() BoardSnapshot {
	snap := demoSnapshot
	snap.ColumnOrderIDs = append([]string{}, demoSnapshot.ColumnOrderIDs...)
	snap.Columns = make([]SnapshotColumn, len(demoSnapshot.Columns))
	for i, column := range demoSnapshot.Columns {
		column.CardOrderIDs = append([]string{}, column.CardOrderIDs...)
		column.Cards = append([]SnapshotCard{}, column.Cards...)
		snap.Columns[i] = column
	}
	return snap
}
