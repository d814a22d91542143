package domain

// CardField is one read-only line rendered inside a card.
type CardField struct {
	Column string `json:"column"`
	Label  string `json:"label"`
	Text   string `json:"text"`
}

// Card is the transient view of one record inside the board.
type Card struct {
	RecordID   string      `json:"record_id"`
	EntityType string      `json:"entity_type"`
	ColumnKey  string      `json:"column_key"`
	Fields     []CardField `json:"fields"`
}

// Reference returns the card's record reference.
func (c Card) Reference() EntityReference {
	return EntityReference{EntityType: c.EntityType, ID: c.RecordID}
}

// Title returns the first rendered field, or the record id.
func (c Card) Title() string {
	for _, field := range c.Fields {
		if field.Text != "" {
			return field.Text
		}
	}
	return c.RecordID
}

// BoardColumn is one rendered column. The unassigned column has no option and
// is never a drop target; it collapses when empty.
type BoardColumn struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Color      string  `json:"color,omitempty"`
	Option     *Option `json:"option,omitempty"`
	Unassigned bool    `json:"unassigned"`
	Collapsed  bool    `json:"collapsed"`
	Cards      []Card  `json:"cards"`
}

// DropTarget reports whether cards can be dropped on the column.
func (c BoardColumn) DropTarget() bool {
	return !c.Unassigned && c.Option != nil
}

// ColumnLayout is the abstract render tree for one board pass.
type ColumnLayout struct {
	Attribute string        `json:"attribute"`
	Composite bool          `json:"composite"`
	Columns   []BoardColumn `json:"columns"`
}

// Column returns the column with the given key and its index.
func (l ColumnLayout) Column(key string) (BoardColumn, int, bool) {
	for idx, column := range l.Columns {
		if column.Key == key {
			return column, idx, true
		}
	}
	return BoardColumn{}, -1, false
}

// ColumnOf returns the key of the column currently holding a record.
func (l ColumnLayout) ColumnOf(recordID string) (string, bool) {
	for _, column := range l.Columns {
		for _, card := range column.Cards {
			if card.RecordID == recordID {
				return column.Key, true
			}
		}
	}
	return "", false
}

// Card returns the card for one record.
func (l ColumnLayout) Card(recordID string) (Card, bool) {
	for _, column := range l.Columns {
		for _, card := range column.Cards {
			if card.RecordID == recordID {
				return card, true
			}
		}
	}
	return Card{}, false
}

// TotalCards counts cards across all columns.
func (l ColumnLayout) TotalCards() int {
	total := 0
	for _, column := range l.Columns {
		total += len(column.Cards)
	}
	return total
}

// Move relocates one card to the target column and re-evaluates the
// unassigned column's collapsed state.
func (l *ColumnLayout) Move(recordID, targetKey string) bool {
	if l == nil {
		return false
	}
	_, targetIdx, ok := l.Column(targetKey)
	if !ok {
		return false
	}
	var (
		moved Card
		found bool
	)
	for colIdx := range l.Columns {
		cards := l.Columns[colIdx].Cards
		for cardIdx, card := range cards {
			if card.RecordID != recordID {
				continue
			}
			moved = card
			found = true
			l.Columns[colIdx].Cards = append(cards[:cardIdx:cardIdx], cards[cardIdx+1:]...)
			break
		}
		if found {
			break
		}
	}
	if !found {
		return false
	}
	moved.ColumnKey = targetKey
	l.Columns[targetIdx].Cards = append(l.Columns[targetIdx].Cards, moved)
	l.refreshCollapsed()
	return true
}

// Clone deep-copies the layout so callers can mutate it independently.
func (l ColumnLayout) Clone() ColumnLayout {
	out := ColumnLayout{
		Attribute: l.Attribute,
		Composite: l.Composite,
		Columns:   make([]BoardColumn, len(l.Columns)),
	}
	for idx, column := range l.Columns {
		cloned := column
		if column.Option != nil {
			opt := *column.Option
			if opt.StateCode != nil {
				opt.StateCode = IntPtr(*opt.StateCode)
			}
			cloned.Option = &opt
		}
		cloned.Cards = make([]Card, len(column.Cards))
		for cardIdx, card := range column.Cards {
			card.Fields = append([]CardField(nil), card.Fields...)
			cloned.Cards[cardIdx] = card
		}
		out.Columns[idx] = cloned
	}
	return out
}

func (l *ColumnLayout) refreshCollapsed() {
	for idx := range l.Columns {
		if l.Columns[idx].Unassigned {
			l.Columns[idx].Collapsed = len(l.Columns[idx].Cards) == 0
		}
	}
}
