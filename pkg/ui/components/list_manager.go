package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ListManager shows a selectable list of items with add and remove buttons
type ListManager[T any] struct {
	list     *widget.List
	items    []T
	selected int

	render   func(T) string
	onAdd    func()
	onRemove func(T)
}

// ListManagerConfig configures a ListManager
type ListManagerConfig[T any] struct {
	Render   func(T) string
	OnAdd    func()  // opens whatever input the caller needs
	OnRemove func(T) // called with the selected item
}

// NewListManager builds the list and its control row
func NewListManager[T any](items []T, cfg ListManagerConfig[T]) (*ListManager[T], fyne.CanvasObject) {
	lm := &ListManager[T]{
		items:    items,
		selected: -1,
		render:   cfg.Render,
		onAdd:    cfg.OnAdd,
		onRemove: cfg.OnRemove,
	}

	lm.list = widget.NewList(
		func() int { return len(lm.items) },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < len(lm.items) {
				o.(*widget.Label).SetText(lm.render(lm.items[i]))
			}
		})
	lm.list.OnSelected = func(id widget.ListItemID) { lm.selected = id }
	lm.list.OnUnselected = func(widget.ListItemID) { lm.selected = -1 }

	add := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		if lm.onAdd != nil {
			lm.onAdd()
		}
	})
	remove := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), lm.RemoveSelected)

	scroll := container.NewScroll(lm.list)
	scroll.SetMinSize(fyne.NewSize(0, 150))

	return lm, container.NewBorder(nil, container.NewHBox(add, remove), nil, nil, scroll)
}

// SetItems replaces the displayed items
func (lm *ListManager[T]) SetItems(items []T) {
	lm.items = items
	lm.selected = -1
	lm.list.UnselectAll()
	lm.list.Refresh()
}

// Items returns the displayed items
func (lm *ListManager[T]) Items() []T {
	return lm.items
}

// Selected returns the selected item, if any
func (lm *ListManager[T]) Selected() (T, bool) {
	var zero T
	if lm.selected < 0 || lm.selected >= len(lm.items) {
		return zero, false
	}
	return lm.items[lm.selected], true
}

// RemoveSelected hands the selected item to OnRemove
func (lm *ListManager[T]) RemoveSelected() {
	if lm.selected < 0 || lm.selected >= len(lm.items) {
		return
	}
	item := lm.items[lm.selected]
	lm.items = append(lm.items[:lm.selected:lm.selected], lm.items[lm.selected+1:]...)
	lm.selected = -1
	lm.list.UnselectAll()
	lm.list.Refresh()
	if lm.onRemove != nil {
		lm.onRemove(item)
	}
}
