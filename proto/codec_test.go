package proto

import (
	"bytes"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec()
	codec.SetNetwork(NetworkRadioWide)

	cases := []struct {
		name       string
		origin     Origin
		persistent bool
		msgType    uint8
		body       []byte
	}{
		{"ping", OriginSystem, false, TypePing, nil},
		{"info", OriginSystem, false, TypeInfo, []byte{ProtocolVersion}},
		{"network info", OriginSystem, false, TypeNetworkInfo, []byte{NetworkRadioWide}},
		{"battery", OriginSystem, false, TypeBatteryInfo, []byte{0x55}},
		{"ota", OriginSystem, false, TypeOTA, []byte{2}},
		{"command", OriginSystem, true, TypeCommand, []byte{CmdDigitalWrite, 4, 0x01, 0x2C}},
		{"user", OriginUser, true, 0x07, []byte("hello")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := codec.Encode(tc.origin, tc.persistent, tc.msgType, tc.body)

			env, err := codec.Decode(raw)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if env.Origin != tc.origin {
				t.Errorf("Expected origin %v, got %v", tc.origin, env.Origin)
			}
			if env.Persistent != tc.persistent {
				t.Errorf("Expected persistent %v, got %v", tc.persistent, env.Persistent)
			}
			if env.Network != NetworkRadioWide {
				t.Errorf("Expected network %d, got %d", NetworkRadioWide, env.Network)
			}
			if env.Type != tc.msgType {
				t.Errorf("Expected type %#x, got %#x", tc.msgType, env.Type)
			}
			if !bytes.Equal(env.Body, tc.body) {
				t.Errorf("Expected body %v, got %v", tc.body, env.Body)
			}
		})
	}
}

func TestCodec_DecodeEmpty(t *testing.T) {
	codec := NewCodec()

	if _, err := codec.Decode(nil); err == nil {
		t.Error("Expected error decoding nil buffer")
	}
	if _, err := codec.Decode([]byte{}); err == nil {
		t.Error("Expected error decoding empty buffer")
	}
}

func TestCodec_EncodePinValue(t *testing.T) {
	codec := NewCodec()

	raw := codec.EncodePinValue(false, CmdAnalogWrite, 4, 300)
	env, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Type != TypeCommand {
		t.Errorf("Expected command type, got %#x", env.Type)
	}
	expected := []byte{CmdAnalogWrite, 4, 0x01, 0x2C}
	if !bytes.Equal(env.Body, expected) {
		t.Errorf("Expected body %v, got %v", expected, env.Body)
	}
}

func TestCodec_EncodePinValuesVariable(t *testing.T) {
	codec := NewCodec()

	raw := codec.EncodePinValuesVariable(false, CmdCustomMethod, ConsolePin, []byte("ok"))
	env, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Body[0] != CmdCustomMethod || env.Body[1] != ConsolePin {
		t.Errorf("Unexpected command header: %v", env.Body[:2])
	}
	if string(env.Body[2:]) != "ok" {
		t.Errorf("Expected payload 'ok', got %q", env.Body[2:])
	}
}

func TestParseMethodParams(t *testing.T) {
	tail := []byte{0x01, 0x2C, 0x00, 0x00, 0x64, 0x00}

	params := ParseMethodParams(tail)
	if len(params) != 2 {
		t.Fatalf("Expected 2 params, got %d", len(params))
	}
	if params[0] != 300 {
		t.Errorf("Expected slot 0 = 300, got %d", params[0])
	}
	if params[1] != 100 {
		t.Errorf("Expected slot 1 = 100, got %d", params[1])
	}
}

func TestParseMethodParams_TruncatedGroup(t *testing.T) {
	// Final group has only one byte and must be dropped.
	tail := []byte{0x01, 0x2C, 0x00, 0x64}

	params := ParseMethodParams(tail)
	if len(params) != 1 {
		t.Fatalf("Expected 1 param, got %d", len(params))
	}
}

func TestEncodeMethodValues(t *testing.T) {
	out := EncodeMethodValues([]uint16{300, 100})

	expected := []byte{0x01, 0x2C, 0x00, 0x00, 0x64, 0x00}
	if !bytes.Equal(out, expected) {
		t.Errorf("Expected %v, got %v", expected, out)
	}

	params := ParseMethodParams(out)
	if params[0] != 300 || params[1] != 100 {
		t.Errorf("Values did not survive round trip: %v", params)
	}
}
