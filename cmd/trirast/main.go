// trirast - Terminal 3D triangle rasterizer viewer.
//
// Controls:
//
//	Mouse drag  - Rotate model (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Space       - Apply random impulse
//	R           - Reset rotation and zoom
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	flag "github.com/spf13/pflag"

	"github.com/soft3d/trirast/pkg/frame"
	"github.com/soft3d/trirast/pkg/linalg"
	"github.com/soft3d/trirast/pkg/loader"
	"github.com/soft3d/trirast/pkg/raster"
	"github.com/soft3d/trirast/pkg/texture"
)

var (
	texturePath = flag.String("texture", "", "Path to texture image (PNG/JPG), overrides any embedded glTF texture")
	targetFPS   = flag.Int("fps", 60, "Target FPS")
	bgColor     = flag.String("bg", "30,30,40", "Background color (R,G,B)")
	fov         = flag.Float64("fov", 60, "Vertical field of view in degrees")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "trirast - Terminal 3D triangle rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: trirast [options] <model.glb|model.gltf>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// RotationAxis tracks position and velocity for one rotation axis with spring decay.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds pitch/yaw/roll with harmonica spring physics.
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	return &RotationState{
		Pitch: NewRotationAxis(fps),
		Yaw:   NewRotationAxis(fps),
		Roll:  NewRotationAxis(fps),
		fps:   fps,
	}
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

func run(modelPath string) error {
	var bgR, bgG, bgB uint8 = 30, 30, 40
	fmt.Sscanf(*bgColor, "%d,%d,%d", &bgR, &bgG, &bgB)
	clearColor := frame.RGBA(bgR, bgG, bgB, 255)

	ext := strings.ToLower(filepath.Ext(modelPath))
	if ext != ".glb" && ext != ".gltf" {
		return fmt.Errorf("unsupported format: %s (use .glb or .gltf)", ext)
	}

	m, err := loader.LoadMesh(modelPath)
	if err != nil {
		return fmt.Errorf("load mesh: %w", err)
	}

	var tex *texture.Texture
	if *texturePath != "" {
		t, err := loader.LoadTexture(*texturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not load texture: %v\n", err)
		} else {
			tex = t
		}
	}
	if tex == nil {
		if t, err := loader.LoadTextureFromGLTF(modelPath); err == nil {
			tex = t
		}
	}
	if tex == nil {
		return fmt.Errorf("no texture available: pass -texture or embed one in the glTF file")
	}

	fmt.Printf("Loaded: %s (%d vertices, %d triangles)\n", filepath.Base(modelPath), m.Len(), m.TriangleCount())

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h")

	rz := raster.New(width, height*2, clearColor)

	rotation := NewRotationState(*targetFPS)
	distance := 15.0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	inputTorque := struct{ pitch, yaw, roll float64 }{}
	const torqueStrength = 3.0
	var mouseDown bool
	var lastMouseX, lastMouseY int

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				rz.Resize(width, height*2)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("q"):
					inputTorque.roll = -torqueStrength
				case ev.MatchString("e"):
					inputTorque.roll = torqueStrength
				case ev.MatchString("r"):
					rotation.Reset()
					distance = 15.0
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("space"):
					rotation.ApplyImpulse(
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
					)
				case ev.MatchString("+", "="):
					distance = math.Max(2, distance-0.5)
				case ev.MatchString("-", "_"):
					distance = math.Min(60, distance+0.5)
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
					inputTorque.pitch = 0
				case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
					inputTorque.yaw = 0
				case ev.MatchString("q"), ev.MatchString("e"):
					inputTorque.roll = 0
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					distance = math.Max(2, distance-0.5)
				case uv.MouseWheelDown:
					distance = math.Min(60, distance+0.5)
				}
			}
		}
	}()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(*targetFPS)
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now
		if dt > 0.1 {
			dt = 0.1
		}

		rotation.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt, inputTorque.roll*dt)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9
		rotation.Update()

		rx := linalg.Rotation(1, 0, 0, float32(rotation.Pitch.Position))
		ry := linalg.Rotation(0, 1, 0, float32(rotation.Yaw.Position))
		rz2 := linalg.Rotation(0, 0, 1, float32(rotation.Roll.Position))
		r := linalg.Mul(rz2, linalg.Mul(ry, rx))
		t := linalg.Translation(0, 0, float32(distance))

		rz.Clear()
		rz.DrawMesh(m, tex, r, t, float32(*fov))

		presentHalfBlocks(rz.Target(), width, height)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
