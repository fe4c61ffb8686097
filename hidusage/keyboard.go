package hidusage

// Keyboard/Keypad page usage names, following the usage table naming.
var keyboardNames = map[uint16]string{
	0x00: "Reserved",
	0x01: "ErrorRollOver",
	0x02: "POSTFail",
	0x03: "ErrorUndefined",
	0x04: "A",
	0x05: "B",
	0x06: "C",
	0x07: "D",
	0x08: "E",
	0x09: "F",
	0x0a: "G",
	0x0b: "H",
	0x0c: "I",
	0x0d: "J",
	0x0e: "K",
	0x0f: "L",
	0x10: "M",
	0x11: "N",
	0x12: "O",
	0x13: "P",
	0x14: "Q",
	0x15: "R",
	0x16: "S",
	0x17: "T",
	0x18: "U",
	0x19: "V",
	0x1a: "W",
	0x1b: "X",
	0x1c: "Y",
	0x1d: "Z",
	0x1e: "1",
	0x1f: "2",
	0x20: "3",
	0x21: "4",
	0x22: "5",
	0x23: "6",
	0x24: "7",
	0x25: "8",
	0x26: "9",
	0x27: "0",
	0x28: "Enter",
	0x29: "Esc",
	0x2a: "Backspace",
	0x2b: "Tab",
	0x2c: "Space",
	0x2d: "Minus",
	0x2e: "Equal",
	0x2f: "LeftBrace",
	0x30: "RightBrace",
	0x31: "Backslash",
	0x33: "Semicolon",
	0x34: "Apostrophe",
	0x35: "Grave",
	0x36: "Comma",
	0x37: "Dot",
	0x38: "Slash",
	0x39: "CapsLock",
	0x3a: "F1",
	0x3b: "F2",
	0x3c: "F3",
	0x3d: "F4",
	0x3e: "F5",
	0x3f: "F6",
	0x40: "F7",
	0x41: "F8",
	0x42: "F9",
	0x43: "F10",
	0x44: "F11",
	0x45: "F12",
	0x46: "PrintScreen",
	0x47: "ScrollLock",
	0x48: "Pause",
	0x49: "Insert",
	0x4a: "Home",
	0x4b: "PageUp",
	0x4c: "Delete",
	0x4d: "End",
	0x4e: "PageDown",
	0x4f: "RightArrow",
	0x50: "LeftArrow",
	0x51: "DownArrow",
	0x52: "UpArrow",
	0x53: "NumLock",
	0x54: "KeypadSlash",
	0x55: "KeypadAsterisk",
	0x56: "KeypadMinus",
	0x57: "KeypadPlus",
	0x58: "KeypadEnter",
	0x59: "Keypad1",
	0x5a: "Keypad2",
	0x5b: "Keypad3",
	0x5c: "Keypad4",
	0x5d: "Keypad5",
	0x5e: "Keypad6",
	0x5f: "Keypad7",
	0x60: "Keypad8",
	0x61: "Keypad9",
	0x62: "Keypad0",
	0x63: "KeypadDot",
	0x64: "102ndKey",
	0x65: "Compose",
	0x66: "Power",
	0x67: "KeypadEqual",
	0xe0: "LeftControl",
	0xe1: "LeftShift",
	0xe2: "LeftAlt",
	0xe3: "LeftGUI",
	0xe4: "RightControl",
	0xe5: "RightShift",
	0xe6: "RightAlt",
	0xe7: "RightGUI",
}
