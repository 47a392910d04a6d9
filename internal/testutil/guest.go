package testutil

// Memory layout of the guest built by WapcGuest.
const (
	GuestOpPtr      = 1024
	GuestHelloPtr   = 4096 // holds "Hello, "; the payload lands right after it
	GuestPayloadPtr = GuestHelloPtr + 7
	GuestHostBufPtr = 32768
	GuestIOVecPtr   = 60000
)

// Operations understood by the guest built by WapcGuest.
const (
	OpHello      = "wapc:sample!Hello" // responds "Hello, " + payload
	OpEcho       = "echo"              // responds with the payload
	OpFail       = "fail"              // reports GuestErrorMessage and returns 0
	OpTrap       = "trap"              // executes unreachable
	OpSilent     = "silent"            // returns 0 without reporting anything
	OpOutOfRange = "oob"               // reports an error from an out-of-range pointer
	OpLog        = "log"               // console-logs the payload
	OpBadLog     = "badlog"            // console-logs invalid UTF-8
	OpHost       = "host"              // host call with the payload, relays the outcome
	OpHostSilent = "hostsilent"        // host call, then returns 0 without reporting
	OpStdout     = "stdout"            // fd_write(1, payload); responds written|errno
	OpStderr     = "stderr"            // fd_write(2, payload); responds written|errno
)

// Fixed strings used by the guest.
const (
	GuestErrorMessage   = "boom"
	GuestUnknownMessage = "unknown operation"
	HostBinding         = "myBinding"
	HostNamespace       = "sample:namespace"
	HostOperation       = "Ping"
	StartMessage        = "start"
	InitMessage         = "init"
)

// GuestOptions selects which imports and exports the guest declares.
type GuestOptions struct {
	ConsoleLog    bool   // import __console_log
	HostCalls     bool   // import __host_call and its response/error pullers
	WASI          bool   // import wasi_snapshot_preview1.fd_write
	Start         string // "" (none), "log" or "trap": export _start
	Init          bool   // export wapc_init, which console-logs InitMessage
	NoGuestCall   bool   // do not export __guest_call
	NoWapcImports bool   // import nothing from the wapc namespace
	BadConsoleSig bool   // import __console_log with a wrong signature
}

// FullGuest declares every wapc import.
func FullGuest() GuestOptions {
	return GuestOptions{ConsoleLog: true, HostCalls: true}
}

type layoutString struct {
	off int32
	s   string
}

var (
	strHello      = layoutString{16, OpHello}
	strEcho       = layoutString{48, OpEcho}
	strFail       = layoutString{56, OpFail}
	strLog        = layoutString{64, OpLog}
	strHost       = layoutString{72, OpHost}
	strTrap       = layoutString{80, OpTrap}
	strSilent     = layoutString{88, OpSilent}
	strBoom       = layoutString{96, GuestErrorMessage}
	strUnknown    = layoutString{104, GuestUnknownMessage}
	strBinding    = layoutString{128, HostBinding}
	strNamespace  = layoutString{144, HostNamespace}
	strOperation  = layoutString{160, HostOperation}
	strStdout     = layoutString{168, OpStdout}
	strStderr     = layoutString{176, OpStderr}
	strBadLog     = layoutString{184, OpBadLog}
	strOOB        = layoutString{192, OpOutOfRange}
	strInvalid    = layoutString{200, "\xff\xfe\xfd"}
	strHostSilent = layoutString{208, OpHostSilent}
	strStart      = layoutString{224, StartMessage}
	strInit       = layoutString{232, InitMessage}
	strHelloPfx   = layoutString{GuestHelloPtr, "Hello, "}
)

func (l layoutString) ptrLen() []byte {
	return Code(I32Const(l.off), I32Const(int32(len(l.s)))) //nolint:gosec // short literals
}

// WapcGuest assembles a waPC guest module.
func WapcGuest(opts GuestOptions) []byte {
	m := NewModule().Memory(1, "memory")
	for _, s := range []layoutString{
		strHello, strEcho, strFail, strLog, strHost, strTrap, strSilent, strBoom, strUnknown,
		strBinding, strNamespace, strOperation, strStdout, strStderr, strBadLog, strOOB,
		strInvalid, strHostSilent, strStart, strInit, strHelloPfx,
	} {
		m.Data(uint32(s.off), []byte(s.s)) //nolint:gosec // layout offsets are positive
	}

	if opts.NoWapcImports {
		call := m.Func(Sig(2, 1), nil, I32Const(1))
		if !opts.NoGuestCall {
			m.Export("__guest_call", call)
		}
		return m.Bytes()
	}

	guestRequest := m.ImportFunc("wapc", "__guest_request", Sig(2, 0))
	guestResponse := m.ImportFunc("wapc", "__guest_response", Sig(2, 0))
	guestError := m.ImportFunc("wapc", "__guest_error", Sig(2, 0))

	var hostCall, hostResponseLen, hostResponse, hostErrorLen, hostError uint32
	if opts.HostCalls {
		hostCall = m.ImportFunc("wapc", "__host_call", Sig(8, 1))
		hostResponseLen = m.ImportFunc("wapc", "__host_response_len", Sig(0, 1))
		hostResponse = m.ImportFunc("wapc", "__host_response", Sig(1, 0))
		hostErrorLen = m.ImportFunc("wapc", "__host_error_len", Sig(0, 1))
		hostError = m.ImportFunc("wapc", "__host_error", Sig(1, 0))
	}

	var consoleLog uint32
	switch {
	case opts.BadConsoleSig:
		m.ImportFunc("wapc", "__console_log", Sig(1, 0))
	case opts.ConsoleLog:
		consoleLog = m.ImportFunc("wapc", "__console_log", Sig(2, 0))
	}
	hasLog := opts.ConsoleLog && !opts.BadConsoleSig

	var fdWrite uint32
	if opts.WASI {
		fdWrite = m.ImportFunc("wasi_snapshot_preview1", "fd_write", Sig(4, 1))
	}

	streq := m.Func(Sig(4, 1), []byte{I32}, streqBody()...)

	// params: 0 op_len, 1 payload_len; local 2 scratch
	branch := func(name layoutString, body ...[]byte) []byte {
		return Code(
			I32Const(GuestOpPtr), LocalGet(0), name.ptrLen(), Call(streq),
			If(), Code(body...), End(),
		)
	}

	body := [][]byte{
		I32Const(GuestOpPtr), I32Const(GuestPayloadPtr), Call(guestRequest),
		branch(strHello,
			I32Const(GuestHelloPtr), LocalGet(1), I32Const(7), I32Add(), Call(guestResponse),
			I32Const(1), Return()),
		branch(strEcho,
			I32Const(GuestPayloadPtr), LocalGet(1), Call(guestResponse),
			I32Const(1), Return()),
		branch(strFail,
			strBoom.ptrLen(), Call(guestError),
			I32Const(0), Return()),
		branch(strTrap, Unreachable()),
		branch(strSilent, I32Const(0), Return()),
		branch(strOOB,
			I32Const(-256), I32Const(16), Call(guestError),
			I32Const(0), Return()),
	}

	if hasLog {
		body = append(body,
			branch(strLog,
				I32Const(GuestPayloadPtr), LocalGet(1), Call(consoleLog),
				I32Const(1), Return()),
			branch(strBadLog,
				strInvalid.ptrLen(), Call(consoleLog),
				I32Const(1), Return()),
		)
	}

	if opts.HostCalls {
		hostCallArgs := Code(
			strBinding.ptrLen(), strNamespace.ptrLen(), strOperation.ptrLen(),
			I32Const(GuestPayloadPtr), LocalGet(1),
		)
		body = append(body,
			branch(strHost,
				hostCallArgs, Call(hostCall),
				If(),
				Call(hostResponseLen), LocalSet(2),
				I32Const(GuestHostBufPtr), Call(hostResponse),
				I32Const(GuestHostBufPtr), LocalGet(2), Call(guestResponse),
				I32Const(1), Return(),
				End(),
				Call(hostErrorLen), LocalSet(2),
				I32Const(GuestHostBufPtr), Call(hostError),
				I32Const(GuestHostBufPtr), LocalGet(2), Call(guestError),
				I32Const(0), Return()),
			branch(strHostSilent,
				hostCallArgs, Call(hostCall), Drop(),
				I32Const(0), Return()),
		)
	}

	if opts.WASI {
		body = append(body,
			branch(strStdout, fdWriteBody(fdWrite, guestResponse, 1)...),
			branch(strStderr, fdWriteBody(fdWrite, guestResponse, 2)...),
		)
	}

	body = append(body, strUnknown.ptrLen(), Call(guestError), I32Const(0))

	call := m.Func(Sig(2, 1), []byte{I32}, body...)
	if !opts.NoGuestCall {
		m.Export("__guest_call", call)
	}

	switch opts.Start {
	case "log":
		if hasLog {
			m.Export("_start", m.Func(Sig(0, 0), nil, strStart.ptrLen(), Call(consoleLog)))
		}
	case "trap":
		m.Export("_start", m.Func(Sig(0, 0), nil, Unreachable()))
	}

	if opts.Init && hasLog {
		m.Export("wapc_init", m.Func(Sig(0, 0), nil, strInit.ptrLen(), Call(consoleLog)))
	}

	return m.Bytes()
}

// streqBody compares (ptr 0, len 1) with (ptr 2, len 3) byte by byte; local 4 is the index.
func streqBody() [][]byte {
	return [][]byte{
		LocalGet(1), LocalGet(3), I32Ne(), If(), I32Const(0), Return(), End(),
		Block(), Loop(),
		LocalGet(4), LocalGet(1), I32GeU(), BrIf(1),
		LocalGet(0), LocalGet(4), I32Add(), I32Load8U(0),
		LocalGet(2), LocalGet(4), I32Add(), I32Load8U(0),
		I32Ne(), If(), I32Const(0), Return(), End(),
		LocalGet(4), I32Const(1), I32Add(), LocalSet(4),
		Br(0),
		End(), End(),
		I32Const(1),
	}
}

// fdWriteBody writes the payload to fd through a single iovec and responds with
// 8 bytes: the written count followed by the errno.
func fdWriteBody(fdWrite, guestResponse uint32, fd int32) [][]byte {
	return [][]byte{
		I32Const(GuestIOVecPtr), I32Const(GuestPayloadPtr), I32Store(0),
		I32Const(GuestIOVecPtr), LocalGet(1), I32Store(4),
		I32Const(GuestIOVecPtr + 8), I32Const(0), I32Store(0),
		I32Const(fd), I32Const(GuestIOVecPtr), I32Const(1), I32Const(GuestIOVecPtr + 8), Call(fdWrite),
		LocalSet(2),
		I32Const(GuestIOVecPtr + 12), LocalGet(2), I32Store(0),
		I32Const(GuestIOVecPtr + 8), I32Const(8), Call(guestResponse),
		I32Const(1), Return(),
	}
}
