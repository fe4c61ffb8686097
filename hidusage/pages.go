package hidusage

var pageNames = map[uint16]string{
	GenericDesktop:  "Generic Desktop",
	SimulationCtrls: "Simulation Controls",
	VRControls:      "VR Controls",
	SportControls:   "Sport Controls",
	GameControls:    "Game Controls",
	GenericDevice:   "Generic Device Controls",
	KeyboardKeypad:  "Keyboard",
	LEDs:            "LEDs",
	Button:          "Button",
	Ordinal:         "Ordinal",
	Telephony:       "Telephony Devices",
	Consumer:        "Consumer Devices",
	Digitizers:      "Digitizers",
	PhysicalInput:   "Physical Interface Device",
	Unicode:         "Unicode",
	Sensor:          "Sensor",
	MedicalInstr:    "Medical Instrument",
	CameraControl:   "Camera Control",
}

var usageNames = map[uint16]map[uint16]string{
	GenericDesktop: {
		0x01: "Pointer",
		0x02: "Mouse",
		0x04: "Joystick",
		0x05: "Game Pad",
		0x06: "Keyboard",
		0x07: "Keypad",
		0x08: "Multi-axis Controller",
		0x30: "X",
		0x31: "Y",
		0x32: "Z",
		0x33: "Rx",
		0x34: "Ry",
		0x35: "Rz",
		0x36: "Slider",
		0x37: "Dial",
		0x38: "Wheel",
		0x39: "Hat switch",
		0x3b: "Byte Count",
		0x3c: "Motion Wakeup",
		0x3d: "Start",
		0x3e: "Select",
		0x48: "Resolution Multiplier",
		0x80: "System Control",
		0x81: "System Power Down",
		0x82: "System Sleep",
		0x83: "System Wake Up",
		0x90: "D-pad Up",
		0x91: "D-pad Down",
		0x92: "D-pad Right",
		0x93: "D-pad Left",
	},
	KeyboardKeypad: keyboardNames,
	LEDs: {
		0x01: "Num Lock",
		0x02: "Caps Lock",
		0x03: "Scroll Lock",
		0x04: "Compose",
		0x05: "Kana",
		0x09: "Mute",
		0x4b: "Generic Indicator",
	},
	Consumer: {
		0x01:  "Consumer Control",
		0x30:  "Power",
		0x34:  "Sleep Mode",
		0x40:  "Menu",
		0x6f:  "Brightness Up",
		0x70:  "Brightness Down",
		0xb0:  "Play",
		0xb1:  "Pause",
		0xb3:  "Fast Forward",
		0xb4:  "Rewind",
		0xb5:  "Scan Next Track",
		0xb6:  "Scan Previous Track",
		0xb7:  "Stop",
		0xb8:  "Eject",
		0xcd:  "Play/Pause",
		0xe2:  "Mute",
		0xe9:  "Volume Up",
		0xea:  "Volume Down",
		0x183: "AL Consumer Control Config",
		0x192: "AL Calculator",
		0x194: "AL Local Machine Browser",
		0x221: "AC Search",
		0x223: "AC Home",
		0x224: "AC Back",
		0x225: "AC Forward",
		0x227: "AC Refresh",
		0x22a: "AC Bookmarks",
		0x238: "AC Pan",
	},
	Digitizers: {
		0x01: "Digitizer",
		0x02: "Pen",
		0x03: "Light Pen",
		0x04: "Touch Screen",
		0x05: "Touch Pad",
		0x20: "Stylus",
		0x22: "Finger",
		0x30: "Tip Pressure",
		0x31: "Barrel Pressure",
		0x32: "In Range",
		0x33: "Touch",
		0x34: "Untouch",
		0x35: "Tap",
		0x38: "Transducer Index",
		0x3c: "Invert",
		0x3d: "X Tilt",
		0x3e: "Y Tilt",
		0x41: "Twist",
		0x42: "Tip Switch",
		0x43: "Secondary Tip Switch",
		0x44: "Barrel Switch",
		0x45: "Eraser",
		0x46: "Tablet Pick",
		0x47: "Confidence",
		0x48: "Width",
		0x49: "Height",
		0x51: "Contact Id",
		0x52: "Input Mode",
		0x53: "Device Index",
		0x54: "Contact Count",
		0x55: "Contact Max",
		0x56: "Scan Time",
		0x59: "Pen/Pad Buttons",
		0x5a: "Secondary Barrel Switch",
		0x5b: "Transducer Serial Number",
	},
	GenericDevice: {
		0x20: "Battery Strength",
		0x21: "Wireless Channel",
		0x22: "Wireless ID",
	},
	Sensor: {
		0x01: "Sensor",
		0x73: "Motion Accelerometer 3D",
		0x76: "Motion Gyrometer 3D",
	},
}
