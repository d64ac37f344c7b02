package tray

import (
	"log"
	"net"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// Actions are the menu callbacks. They are called from the tray goroutine.
type Actions struct {
	RemapKeyboard   func()
	RemapController func()
	FinishRemap     func()
	CancelSelection func()
	NextGameType    func()
	Shutdown        func()
}

// Tray manages the system tray icon and menu
type Tray struct {
	url          string
	actions      Actions
	once         sync.Once
	shuttingDown atomic.Bool

	menuOpen       *systray.MenuItem
	menuKeyboard   *systray.MenuItem
	menuController *systray.MenuItem
	menuFinish     *systray.MenuItem
	menuCancel     *systray.MenuItem
	menuGameType   *systray.MenuItem
	menuExit       *systray.MenuItem
}

func New(listen string, actions Actions) *Tray {
	return &Tray{url: ViewerURL(listen), actions: actions}
}

// ViewerURL is the browser address of the viewer served on listen.
func ViewerURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://localhost:8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and ends Run.
func (t *Tray) Quit() {
	if t.shuttingDown.CompareAndSwap(false, true) {
		systray.Quit()
	}
}

func (t *Tray) onReady() {
	systray.SetTitle("padroute")
	systray.SetTooltip("padroute - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open Viewer", "Watch routed inputs in the browser")
	systray.AddSeparator()
	t.menuKeyboard = systray.AddMenuItem("Remap Keyboard", "Change keyboard bindings")
	t.menuController = systray.AddMenuItem("Remap Controller", "Change controller bindings")
	t.menuFinish = systray.AddMenuItem("Finish Remapping", "Save the new bindings")
	t.menuCancel = systray.AddMenuItem("Cancel Selection", "Abandon the input being remapped")
	t.menuGameType = systray.AddMenuItem("Next Game Type", "Switch to the next built-in keymap")
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	go t.handleMenuClicks()

	log.Println("System tray initialized")
}

// handleMenuClicks processes menu item clicks without blocking
func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuKeyboard.ClickedCh:
			call(t.actions.RemapKeyboard)
		case <-t.menuController.ClickedCh:
			call(t.actions.RemapController)
		case <-t.menuFinish.ClickedCh:
			call(t.actions.FinishRemap)
		case <-t.menuCancel.ClickedCh:
			call(t.actions.CancelSelection)
		case <-t.menuGameType.ClickedCh:
			call(t.actions.NextGameType)
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				if t.actions.Shutdown != nil {
					t.once.Do(t.actions.Shutdown)
				}
				systray.Quit()
				return
			}
		}
	}
}

func call(f func()) {
	if f != nil {
		f()
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	log.Println("System tray exiting")
}

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}

	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
