//go:build !js

package shell

import "github.com/go-gl/glfw/v3.3/glfw"

// Input events delivered to window actors. Repeats are filtered out, a
// window that cares about held keys tracks press and release itself.

type KeyEvent struct {
	Key    glfw.Key
	Action glfw.Action
	Mods   glfw.ModifierKey
}

type MouseButtonEvent struct {
	Button glfw.MouseButton
	Action glfw.Action
}

type CursorEvent struct {
	X, Y float32
}

// ResizeEvent reports the new framebuffer extent. The surface itself is
// resized before the event is delivered.
type ResizeEvent struct {
	Width, Height uint32
}
