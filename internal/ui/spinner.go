package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// SpinnerFrames is the animation shared by the CLI spinner and the watch
// screen.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

// Spinner displays an animated status line while sites are queried. It
// draws nothing until Start and clears its line on Stop.
type Spinner struct {
	mu       sync.Mutex
	w        io.Writer
	label    string
	frame    int
	last     int
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSpinner creates a spinner writing to w, usually stderr.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.mu.Unlock()

	s.render()
	go s.animate()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	<-s.doneChan
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

// SetLabel updates the label shown next to the animation.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(SpinnerFrames.FPS)
	defer ticker.Stop()
	defer close(s.doneChan)

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(SpinnerFrames.Frames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := lipgloss.NewStyle().Foreground(ColorSecondary).Render(SpinnerFrames.Frames[s.frame])
	line := fmt.Sprintf("%s %s...", symbol, s.label)
	s.clear()
	fmt.Fprint(s.w, line)
	s.last = lipgloss.Width(line)
}

// clear blanks the last rendered line. Callers hold mu.
func (s *Spinner) clear() {
	if s.last > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.last)+"\r")
		s.last = 0
	}
}
