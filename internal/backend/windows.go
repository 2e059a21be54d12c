//go:build windows

package backend

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/keys"
)

func init() {
	factories[Windows] = func() hook.Backend { return NewWindowsBackend() }
	defaultBackend = Windows
}

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procSendInput           = user32.NewProc("SendInput")
	procGetAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
)

const (
	whKeyboardLL = 13
	wmQuit       = 0x0012
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105

	llkhfInjected = 0x10

	inputKeyboard        = 1
	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002

	// relayTag marks keystrokes synthesized by Send so the hook can let them
	// through untouched.
	relayTag uintptr = 0x504B5259
)

// kbdllHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// winMsg mirrors the Win32 MSG struct.
type winMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

type keybdInput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// keyboardInput mirrors INPUT. The trailing pad makes the union as large as
// MOUSEINPUT: 40 bytes on amd64, 28 on 386.
type keyboardInput struct {
	Type uint32
	Ki   keybdInput
	_    [8]byte
}

// The low-level hook callback can only be created once per process, so it
// routes to whichever backend is currently running.
var (
	callbackOnce sync.Once
	callbackPtr  uintptr

	activeMu sync.RWMutex
	active   *WindowsBackend
)

func hookCallback() uintptr {
	callbackOnce.Do(func() {
		callbackPtr = windows.NewCallback(lowLevelKeyboardProc)
	})
	return callbackPtr
}

func lowLevelKeyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 {
		activeMu.RLock()
		b := active
		activeMu.RUnlock()
		if b != nil && b.handle(wParam, (*kbdllHookStruct)(unsafe.Pointer(lParam))) {
			return 1
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

// WindowsBackend installs a WH_KEYBOARD_LL hook on a dedicated, locked OS
// thread and feeds its events through a hook.Router.
type WindowsBackend struct {
	*hook.Router

	mu       sync.Mutex
	threadID uint32
	doneCh   chan struct{}
	closed   bool
}

var _ hook.Backend = (*WindowsBackend)(nil)

// NewWindowsBackend returns an unstarted backend.
func NewWindowsBackend() *WindowsBackend {
	b := &WindowsBackend{Router: hook.NewRouter()}
	b.Router.SetLiveState(hook.LiveState{Pressed: b.IsPressed})
	return b
}

func (b *WindowsBackend) Name() string { return "Windows low-level hook" }

func (b *WindowsBackend) IsAvailable() bool {
	if err := user32.Load(); err != nil {
		log.Printf("Windows backend: user32.dll is unavailable: %v", err)
		return false
	}
	return true
}

type loopReady struct {
	threadID uint32
	err      error
}

// Start installs the hook and returns once events are flowing.
func (b *WindowsBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return hook.ErrClosed
	}
	if b.doneCh != nil {
		return nil
	}

	activeMu.Lock()
	if active != nil && active != b {
		activeMu.Unlock()
		return errors.New("another Windows keyboard hook is already running")
	}
	active = b
	activeMu.Unlock()

	readyCh := make(chan loopReady, 1)
	doneCh := make(chan struct{})
	go runHookLoop(readyCh, doneCh)

	ready := <-readyCh
	if ready.err != nil {
		activeMu.Lock()
		active = nil
		activeMu.Unlock()
		return fmt.Errorf("install keyboard hook: %w", ready.err)
	}
	b.threadID = ready.threadID
	b.doneCh = doneCh
	log.Printf("Windows backend: keyboard hook installed on thread %d", ready.threadID)
	return nil
}

func runHookLoop(readyCh chan<- loopReady, doneCh chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(doneCh)

	hhk, _, err := procSetWindowsHookExW.Call(whKeyboardLL, hookCallback(), 0, 0)
	if hhk == 0 {
		readyCh <- loopReady{err: err}
		return
	}
	defer procUnhookWindowsHookEx.Call(hhk)

	readyCh <- loopReady{threadID: windows.GetCurrentThreadId()}

	var msg winMsg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		// 0 is WM_QUIT, -1 is an error; both end the loop.
		if int32(ret) <= 0 {
			return
		}
	}
}

// handle runs on the hook thread and reports whether to swallow the event.
func (b *WindowsBackend) handle(wParam uintptr, kb *kbdllHookStruct) bool {
	key, ok := keyByVK[kb.VkCode]
	if !ok {
		return false
	}
	ev := hook.Event{
		Key:      key,
		Injected: kb.Flags&llkhfInjected != 0 && kb.DwExtraInfo == relayTag,
	}
	switch wParam {
	case wmKeyDown, wmSysKeyDown:
		ev.Type = hook.KeyDown
	case wmKeyUp, wmSysKeyUp:
		ev.Type = hook.KeyUp
	default:
		return false
	}
	return b.Router.Dispatch(ev)
}

// Send synthesizes a down+up keystroke tagged with relayTag.
func (b *WindowsBackend) Send(key keys.Key) error {
	vk, ok := vkByKey[key]
	if !ok {
		return fmt.Errorf("%w: %q", hook.ErrUnknownKey, key)
	}
	flags := uint32(0)
	if extendedVK[vk] {
		flags |= keyeventfExtendedKey
	}
	inputs := []keyboardInput{
		{Type: inputKeyboard, Ki: keybdInput{WVk: uint16(vk), DwFlags: flags, DwExtraInfo: relayTag}},
		{Type: inputKeyboard, Ki: keybdInput{WVk: uint16(vk), DwFlags: flags | keyeventfKeyUp, DwExtraInfo: relayTag}},
	}
	ret, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if ret != uintptr(len(inputs)) {
		return fmt.Errorf("SendInput sent %d of %d inputs: %w", ret, len(inputs), err)
	}
	return nil
}

// IsPressed reads the live key state with GetAsyncKeyState.
func (b *WindowsBackend) IsPressed(key keys.Key) (bool, error) {
	vk, ok := vkByKey[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", hook.ErrUnknownKey, key)
	}
	ret, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(ret)&0x8000 != 0, nil
}

// Close stops the message loop, which removes the hook, and drops every
// registration.
func (b *WindowsBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.Router.Close()

	activeMu.Lock()
	if active == b {
		active = nil
	}
	activeMu.Unlock()

	if b.doneCh == nil {
		return nil
	}
	ret, _, err := procPostThreadMessageW.Call(uintptr(b.threadID), wmQuit, 0, 0)
	if ret == 0 {
		return fmt.Errorf("post WM_QUIT to hook thread %d: %w", b.threadID, err)
	}
	select {
	case <-b.doneCh:
		log.Println("Windows backend: keyboard hook removed")
		return nil
	case <-time.After(2 * time.Second):
		return fmt.Errorf("hook thread %d did not exit", b.threadID)
	}
}
