package gamepad

import (
	"math"

	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/mapping"
)

// Physical input names. These are the keys of controller mappings.
const (
	ButtonA               = "buttonA"
	ButtonB               = "buttonB"
	ButtonX               = "buttonX"
	ButtonY               = "buttonY"
	LeftShoulder          = "leftShoulder"
	RightShoulder         = "rightShoulder"
	LeftTrigger           = "leftTrigger"
	RightTrigger          = "rightTrigger"
	LeftThumbstickButton  = "leftThumbstickButton"
	RightThumbstickButton = "rightThumbstickButton"
	Start                 = "start"
	Select                = "select"
	Home                  = "home"
	DpadUp                = "dpadUp"
	DpadDown              = "dpadDown"
	DpadLeft              = "dpadLeft"
	DpadRight             = "dpadRight"
)

// Thumbstick direction names, as "<stick>Up" and so on.
const (
	LeftThumbstick  = "leftThumbstick"
	RightThumbstick = "rightThumbstick"
)

// AxisMapping defines how a raw axis index maps to a stick axis or trigger.
type AxisMapping struct {
	Index     int32
	Target    string // "left_x", "left_y", "right_x", "right_y", LeftTrigger, RightTrigger
	IsTrigger bool
	Invert    bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw button index maps to a physical input.
type ButtonMapping struct {
	Index  int32
	Target string
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	return max(float64(raw)/math.MaxInt16, -1)
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	return min(max(v, 0), 1)
}

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
func ApplyDeadzone(v float64, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

var standardAxes = []AxisMapping{
	{Index: 0, Target: "left_x"},
	{Index: 1, Target: "left_y", Invert: true},
	{Index: 2, Target: "right_x"},
	{Index: 3, Target: "right_y", Invert: true},
	{Index: 4, Target: LeftTrigger, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	{Index: 5, Target: RightTrigger, IsTrigger: true, RawMin: -32768, RawMax: 32767},
}

var standardButtons = []ButtonMapping{
	{Index: 0, Target: ButtonA},
	{Index: 1, Target: ButtonB},
	{Index: 2, Target: ButtonX},
	{Index: 3, Target: ButtonY},
	{Index: 4, Target: LeftShoulder},
	{Index: 5, Target: RightShoulder},
	{Index: 6, Target: Select},
	{Index: 7, Target: Start},
	{Index: 8, Target: LeftThumbstickButton},
	{Index: 9, Target: RightThumbstickButton},
	{Index: 10, Target: Home},
}

var xboxMapping = &DeviceMapping{
	Name:    "xbox",
	Axes:    standardAxes,
	Buttons: standardButtons,
	HasHat:  true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: ButtonA}, // Cross
		{Index: 1, Target: ButtonB}, // Circle
		{Index: 2, Target: ButtonX}, // Square
		{Index: 3, Target: ButtonY}, // Triangle
		{Index: 4, Target: Select},  // Share / Create
		{Index: 5, Target: Home},
		{Index: 6, Target: Start}, // Options
		{Index: 7, Target: LeftThumbstickButton},
		{Index: 8, Target: RightThumbstickButton},
		{Index: 9, Target: LeftShoulder},
		{Index: 10, Target: RightShoulder},
	},
	HasHat: true,
}

var switchProMapping = &DeviceMapping{
	Name:    "switch_pro",
	Axes:    standardAxes[:4],
	Buttons: standardButtons,
	HasHat:  true,
}

var genericMapping = &DeviceMapping{
	Name:    "generic",
	Axes:    standardAxes,
	Buttons: standardButtons,
	HasHat:  true,
}

type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	if m, ok := knownDevices[deviceKey{VendorID: vendorID, ProductID: productID}]; ok {
		return m
	}
	return genericMapping
}

// Built-in physical to skin bindings. The d-pad and the left stick both
// drive the directions.
var defaultBindings = map[string]string{
	ButtonA:                 "a",
	ButtonB:                 "b",
	ButtonX:                 "x",
	ButtonY:                 "y",
	LeftShoulder:            "l",
	RightShoulder:           "r",
	Start:                   "start",
	Select:                  "select",
	Home:                    "menu",
	RightTrigger:            "toggleFastForward",
	DpadUp:                  "up",
	DpadDown:                "down",
	DpadLeft:                "left",
	DpadRight:               "right",
	LeftThumbstick + "Up":    "up",
	LeftThumbstick + "Down":  "down",
	LeftThumbstick + "Left":  "left",
	LeftThumbstick + "Right": "right",
}

// DefaultMapping returns a fresh copy of the built-in mapping for a
// controller.
func DefaultMapping(controllerName string) *mapping.Mapping {
	m := mapping.New(controllerName, input.PhysicalStandard)
	for key, skinKey := range defaultBindings {
		m.Put(key, input.New(skinKey, input.SkinStandard))
	}
	return m
}
