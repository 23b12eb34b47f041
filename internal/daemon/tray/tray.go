package tray

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"sync"

	"github.com/getlantern/systray"

	"github.com/watchfire-io/taskwidget/internal/models"
	"github.com/watchfire-io/taskwidget/internal/render"
)

const maxTaskSlots = 10

var (
	state   DaemonState
	onStart func()
	onExit  func()

	statusItem *systray.MenuItem

	// Pre-allocated task menu slots
	taskSlots   [maxTaskSlots]*systray.MenuItem
	noTasksItem *systray.MenuItem
	refreshItem *systray.MenuItem
	openItem    *systray.MenuItem
	quitItem    *systray.MenuItem

	readyMu sync.Mutex
	ready   bool
	pending *render.Result
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start the daemon services here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s DaemonState, onStartFn, onExitFn func()) {
	state = s
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTooltip("Taskwidget")

	header := systray.AddMenuItem("Taskwidget", "")
	header.Disable()

	statusItem = systray.AddMenuItem("Starting...", "")
	statusItem.Disable()

	systray.AddSeparator()

	for i := 0; i < maxTaskSlots; i++ {
		taskSlots[i] = systray.AddMenuItem("", "Open widget")
		taskSlots[i].Hide()
	}
	noTasksItem = systray.AddMenuItem("No tasks found.", "")
	noTasksItem.Disable()

	systray.AddSeparator()

	refreshItem = systray.AddMenuItem("Refresh now", "Run the export command again")
	openItem = systray.AddMenuItem("Open widget", "Open the widget in a browser")
	quitItem = systray.AddMenuItem("Quit", "Shut down the taskwidget daemon")

	readyMu.Lock()
	ready = true
	res := pending
	pending = nil
	readyMu.Unlock()
	if res != nil {
		applyResult(*res)
	}

	if onStart != nil {
		onStart()
	}

	go handleClicks()
	for i := 0; i < maxTaskSlots; i++ {
		go handleSlotClicks(taskSlots[i])
	}
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-refreshItem.ClickedCh:
			if state != nil {
				state.Refresh()
			}
		case <-openItem.ClickedCh:
			openWidget()
		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}
		}
	}
}

func handleSlotClicks(item *systray.MenuItem) {
	for range item.ClickedCh {
		openWidget()
	}
}

func openWidget() {
	if state == nil {
		return
	}
	if err := OpenURL(state.URL()); err != nil {
		log.Printf("[tray] failed to open widget: %v", err)
	}
}

// UpdateTasks refreshes the task menu items and tooltip from a render
// result. Results arriving before the menu exists are applied once it does.
func UpdateTasks(res render.Result) {
	readyMu.Lock()
	if !ready {
		pending = &res
		readyMu.Unlock()
		return
	}
	readyMu.Unlock()
	applyResult(res)
}

func applyResult(res render.Result) {
	for i := 0; i < maxTaskSlots; i++ {
		taskSlots[i].Hide()
	}

	statusItem.SetTitle(formatStatus(res))
	systray.SetTooltip(formatTooltip(res))

	if res.Kind != render.KindTasks {
		noTasksItem.SetTitle(formatStatus(res))
		noTasksItem.Show()
		return
	}
	noTasksItem.Hide()
	for i, task := range res.List.Tasks {
		if i >= maxTaskSlots {
			break
		}
		taskSlots[i].SetTitle(formatTaskTitle(task))
		taskSlots[i].Show()
	}
}

func formatStatus(res render.Result) string {
	switch res.Kind {
	case render.KindEmpty:
		return "No tasks found."
	case render.KindError:
		return "Error: " + res.Err.Error()
	default:
		return fmt.Sprintf("%d of %d tasks shown", len(res.List.Tasks), res.List.Total)
	}
}

func formatTooltip(res render.Result) string {
	overdue, today := 0, 0
	for _, t := range res.List.Tasks {
		switch t.Bucket {
		case models.BucketOverdue:
			overdue++
		case models.BucketToday:
			today++
		}
	}
	switch {
	case res.Kind == render.KindError:
		return "Taskwidget: export failed"
	case overdue > 0:
		return fmt.Sprintf("Taskwidget: %d overdue, %d due today", overdue, today)
	case today > 0:
		return fmt.Sprintf("Taskwidget: %d due today", today)
	default:
		return fmt.Sprintf("Taskwidget: %d tasks", res.List.Total)
	}
}

func formatTaskTitle(t models.DisplayTask) string {
	marker := "○"
	switch t.Bucket {
	case models.BucketOverdue:
		marker = "●"
	case models.BucketToday:
		marker = "◐"
	}
	title := fmt.Sprintf("%s %s", marker, t.Description)
	if due := t.DueLabel(); due != "" {
		title += " (" + due + ")"
	}
	if t.Started {
		title = t.StartMarker + " " + title
	}
	return title
}

// OpenURL opens url with the platform's default handler.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
