package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/faiface/pixel/pixelgl"
	"github.com/spf13/cobra"

	"github.com/bradford-hamilton/uxngo/internal/host/audio"
	"github.com/bradford-hamilton/uxngo/internal/host/console"
	"github.com/bradford-hamilton/uxngo/internal/host/controller"
	"github.com/bradford-hamilton/uxngo/internal/host/datetime"
	"github.com/bradford-hamilton/uxngo/internal/host/display"
	"github.com/bradford-hamilton/uxngo/internal/host/file"
	"github.com/bradford-hamilton/uxngo/internal/host/mouse"
	"github.com/bradford-hamilton/uxngo/internal/uxn"
	"github.com/bradford-hamilton/uxngo/internal/uxn/screen"
	"github.com/bradford-hamilton/uxngo/internal/uxn/system"
)

// refreshRate is the SCREEN vector evaluation and presentation rate.
const refreshRate = 60

// defaultWidth/defaultHeight are the boot-time SCREEN dimensions, matching
// uxncli's own default.
const (
	defaultWidth  = 512
	defaultHeight = 320
	windowScale   = 1.0
)

// runCmd boots a rom and runs it to completion, driving SCREEN, CONSOLE,
// CONTROLLER, MOUSE, FILE, DATETIME and AUDIO through a window.
var runCmd = &cobra.Command{
	Use:   "run `path/to/rom`",
	Short: "run a uxn rom",
	Args:  cobra.MinimumNArgs(1),
	Run:   runUxn,
}

func runUxn(cmd *cobra.Command, args []string) {
	pathToROM := args[0]
	romArgs := args[1:]

	rom, err := os.ReadFile(pathToROM)
	if err != nil {
		fmt.Printf("\nerror reading rom %s: %v\n", pathToROM, err)
		os.Exit(1)
	}

	// pixelgl needs access to the main thread, so the whole run lives
	// inside the callback it schedules there.
	pixelgl.Run(func() {
		runMachine(rom, romArgs)
	})
}

func runMachine(rom []byte, romArgs []string) {
	m := uxn.New()
	m.Boot(rom)

	scr := screen.New()
	sys := system.New()
	con := console.New()

	m.Devices[0x0] = sys
	m.Devices[0x1] = con
	m.Devices[0x2] = scr
	m.Devices[0x3] = audio.New()
	m.Devices[0x4] = audio.New()
	m.Devices[0x5] = audio.New()
	m.Devices[0x6] = audio.New()
	m.Devices[0x8] = controller.New()
	m.Devices[0x9] = mouse.New()
	m.Devices[0xa] = file.New()
	m.Devices[0xb] = file.New()
	m.Devices[0xc] = datetime.New()

	if err := audio.Init(); err != nil {
		fmt.Printf("warning: could not initialize audio: %v\n", err)
	}

	win, err := display.NewWindow("uxngo", defaultWidth, defaultHeight, windowScale)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	scr.OnResize = win.Resize
	scr.Resize(defaultWidth, defaultHeight)

	m.Eval(uxn.PageProgram)
	con.Args(m, romArgs)

	go con.Listen(m, os.Stdin)

	ticker := time.NewTicker(time.Second / refreshRate)
	defer ticker.Stop()

	for range ticker.C {
		if win.Closed() || m.Halted() {
			break
		}
		pumpInput(m, win)
		m.Eval(uint16(m.Dev[0x20])<<8 | uint16(m.Dev[0x21]))
		win.Present(m, scr)
	}

	if m.Halted() {
		os.Exit(int(m.ExitCode()))
	}
}

// pumpInput reflects the host window's mouse position into the MOUSE
// device every frame; keyboard and button mapping follow the same
// km-style lookup table the teacher used for its chip8 keypad.
func pumpInput(m *uxn.Machine, win *display.Window) {
	pos := win.MousePosition()
	mouse.Move(m, uint16(pos.X), uint16(pos.Y))
	mouse.SetButton(m, mouse.ButtonLeft, win.Pressed(pixelgl.MouseButtonLeft))
	mouse.SetButton(m, mouse.ButtonRight, win.Pressed(pixelgl.MouseButtonRight))
	mouse.SetButton(m, mouse.ButtonMiddle, win.Pressed(pixelgl.MouseButtonMiddle))

	for bit, key := range controllerKeys {
		controller.SetButton(m, bit, win.Pressed(key))
	}
}

// controllerKeys maps CONTROLLER button bits to window keys, the same
// fixed keymap idiom as the teacher's chip8 KeyMap.
var controllerKeys = map[uint8]pixelgl.Button{
	controller.ButtonUp:     pixelgl.KeyUp,
	controller.ButtonDown:   pixelgl.KeyDown,
	controller.ButtonLeft:   pixelgl.KeyLeft,
	controller.ButtonRight:  pixelgl.KeyRight,
	controller.ButtonA:      pixelgl.KeyZ,
	controller.ButtonB:      pixelgl.KeyX,
	controller.ButtonSelect: pixelgl.KeyA,
	controller.ButtonStart:  pixelgl.KeyS,
}
