package command

import "strconv"

// Opcode identifies a command exchanged between the UI and the core worker.
type Opcode int

// Side tells which worker consumes an opcode.
type Side int

const (
	SideUI Side = iota
	SideCore
)

// Commands handled by the UI worker.
const (
	UILoop      Opcode = 1 + iota // wait for the next user command
	UIShowEntry                   // number, information, secret
	UIClearView
	UIAskYesNo // next opcode, question
	UISignedIn
	UIAlert // message
	UIError // message, fatal
	UIStartEdit
)

// Commands handled by the core worker.
const (
	CoreKey           Opcode = 100 + iota // password
	CorePrint
	CoreAdd                               // information, secret
	CoreSearch                            // pattern
	CoreDeleteRequest                     // entry number
	CoreDeleteConfirm                     // y/n
	CoreExport                            // path
	CoreImport                            // path
	CoreExit
	CoreEditRequest // entry number
	CoreEditSubmit  // information, secret
)

// Side returns the worker that consumes o.
func (o Opcode) Side() Side {
	if o >= CoreKey {
		return SideCore
	}
	return SideUI
}

var names = map[Opcode]string{
	UILoop:            "loop",
	UIShowEntry:       "show-entry",
	UIClearView:       "clear-view",
	UIAskYesNo:        "ask-yes-no",
	UISignedIn:        "signed-in",
	UIAlert:           "alert",
	UIError:           "error",
	UIStartEdit:       "start-edit",
	CoreKey:           "establish-key",
	CorePrint:         "print",
	CoreAdd:           "add",
	CoreSearch:        "search",
	CoreDeleteRequest: "delete-request",
	CoreDeleteConfirm: "delete-confirm",
	CoreExport:        "export",
	CoreImport:        "import",
	CoreExit:          "exit",
	CoreEditRequest:   "edit-request",
	CoreEditSubmit:    "edit-submit",
}

func (o Opcode) String() string {
	if n, ok := names[o]; ok {
		return n
	}
	return "opcode(" + strconv.Itoa(int(o)) + ")"
}

// ParseOpcode reads back an opcode carried as a command argument, as done
// by ask-yes-no for the command to send with the answer.
func ParseOpcode(s string) (Opcode, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	o := Opcode(n)
	if _, ok := names[o]; !ok {
		return 0, false
	}
	return o, true
}

// Arg formats o so it can travel as a command argument.
func (o Opcode) Arg() string { return strconv.Itoa(int(o)) }
