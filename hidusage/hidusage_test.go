package hidusage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver(t *testing.T) {
	res := NewResolver()

	assert.Equal(t, "Generic Desktop", res.PageName(GenericDesktop))
	assert.Equal(t, "Mouse", res.UsageName(GenericDesktop, 0x02))
	assert.Equal(t, "AC Pan", res.UsageName(Consumer, 0x238))
	assert.Equal(t, "LeftControl", res.UsageName(KeyboardKeypad, 0xe0))
	assert.Equal(t, "", res.UsageName(GenericDesktop, 0xeeee))
	assert.Equal(t, "", res.PageName(0x1234))
}

func TestButtonPage(t *testing.T) {
	res := NewResolver()

	assert.Equal(t, "Button1", res.UsageName(Button, 1))
	assert.Equal(t, "Button16", res.UsageName(Button, 16))
	assert.Equal(t, "No Button", res.UsageName(Button, 0))
}

func TestFormatFallbacks(t *testing.T) {
	res := NewResolver()

	assert.Equal(t, "Generic Desktop", FormatPage(res, GenericDesktop))
	assert.Equal(t, "Vendor Defined Page 0xff00", FormatPage(res, 0xff00))
	assert.Equal(t, "0x1234", FormatPage(res, 0x1234))

	assert.Equal(t, "X", FormatUsage(res, GenericDesktop, 0x30))
	assert.Equal(t, "Vendor Usage 0x01", FormatUsage(res, 0xff00, 0x01))
	assert.Equal(t, "0xeeee", FormatUsage(res, GenericDesktop, 0xeeee))
}
