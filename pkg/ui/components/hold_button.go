package components

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const holdTick = 50 * time.Millisecond

// HoldButton fires OnComplete only after being held down for HoldTime.
// Releasing early or leaving the button resets the progress bar.
type HoldButton struct {
	widget.BaseWidget
	Text       string
	HoldTime   time.Duration
	OnComplete func()

	mu       sync.Mutex
	hovered  bool
	progress float64
	stop     chan struct{}
}

// NewHoldButton creates a button that completes after hold
func NewHoldButton(text string, hold time.Duration, onComplete func()) *HoldButton {
	if hold <= 0 {
		hold = time.Second
	}
	b := &HoldButton{Text: text, HoldTime: hold, OnComplete: onComplete}
	b.ExtendBaseWidget(b)
	return b
}

// CreateRenderer implements fyne.Widget
func (b *HoldButton) CreateRenderer() fyne.WidgetRenderer {
	text := canvas.NewText(b.Text, theme.Color(theme.ColorNameForeground))
	text.Alignment = fyne.TextAlignCenter
	text.TextSize = theme.TextSize() * 1.5
	text.TextStyle.Bold = true

	return &holdButtonRenderer{
		button:   b,
		text:     text,
		bg:       canvas.NewRectangle(theme.Color(theme.ColorNameButton)),
		progress: canvas.NewRectangle(theme.Color(theme.ColorNamePrimary)),
	}
}

// Progress returns the hold progress in [0,1]
func (b *HoldButton) Progress() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progress
}

func (b *HoldButton) setProgress(p float64) {
	b.mu.Lock()
	b.progress = p
	b.mu.Unlock()
	fyne.Do(b.Refresh)
}

// Press starts the hold timer
func (b *HoldButton) Press() {
	b.mu.Lock()
	if b.stop != nil {
		b.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	b.stop = stop
	b.progress = 0
	b.mu.Unlock()

	go b.run(stop)
}

// Release cancels an unfinished hold
func (b *HoldButton) Release() {
	b.mu.Lock()
	stop := b.stop
	b.stop = nil
	b.mu.Unlock()

	if stop != nil {
		close(stop)
		b.setProgress(0)
	}
}

func (b *HoldButton) run(stop chan struct{}) {
	ticker := time.NewTicker(holdTick)
	defer ticker.Stop()
	started := time.Now()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p := min(float64(time.Since(started))/float64(b.HoldTime), 1)

			b.mu.Lock()
			if b.stop != stop {
				b.mu.Unlock()
				return
			}
			b.progress = p
			finished := p >= 1
			if finished {
				b.stop = nil
			}
			b.mu.Unlock()
			fyne.Do(b.Refresh)

			if finished {
				if b.OnComplete != nil {
					b.OnComplete()
				}
				return
			}
		}
	}
}

// Tapped implements fyne.Tappable; a tap alone never completes
func (b *HoldButton) Tapped(*fyne.PointEvent) {}

// MouseIn implements desktop.Hoverable
func (b *HoldButton) MouseIn(*desktop.MouseEvent) {
	b.mu.Lock()
	b.hovered = true
	b.mu.Unlock()
	b.Refresh()
}

// MouseMoved implements desktop.Hoverable
func (b *HoldButton) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable
func (b *HoldButton) MouseOut() {
	b.mu.Lock()
	b.hovered = false
	b.mu.Unlock()
	b.Release()
	b.Refresh()
}

// MouseDown implements desktop.Mouseable
func (b *HoldButton) MouseDown(*desktop.MouseEvent) { b.Press() }

// MouseUp implements desktop.Mouseable
func (b *HoldButton) MouseUp(*desktop.MouseEvent) { b.Release() }

type holdButtonRenderer struct {
	button   *HoldButton
	text     *canvas.Text
	bg       *canvas.Rectangle
	progress *canvas.Rectangle
}

func (r *holdButtonRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.text.Resize(size)
	r.progress.Move(fyne.NewPos(0, 0))
	r.progress.Resize(fyne.NewSize(size.Width*float32(r.button.Progress()), size.Height))
}

func (r *holdButtonRenderer) MinSize() fyne.Size {
	textSize := r.text.MinSize()
	return fyne.NewSize(
		max(textSize.Width+theme.Padding()*4, 320),
		max(textSize.Height+theme.Padding()*2, 96),
	)
}

func (r *holdButtonRenderer) Refresh() {
	r.text.Text = r.button.Text
	r.text.Color = theme.Color(theme.ColorNameForeground)

	r.button.mu.Lock()
	hovered := r.button.hovered
	r.button.mu.Unlock()
	if hovered {
		r.bg.FillColor = theme.Color(theme.ColorNameHover)
	} else {
		r.bg.FillColor = theme.Color(theme.ColorNameButton)
	}

	r.Layout(r.bg.Size())
	r.bg.Refresh()
	r.progress.Refresh()
	r.text.Refresh()
}

func (r *holdButtonRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bg, r.progress, r.text}
}

func (r *holdButtonRenderer) Destroy() {}

func (r *holdButtonRenderer) BackgroundColor() color.Color {
	return theme.Color(theme.ColorNameButton)
}
