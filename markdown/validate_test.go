package markdown

import (
	"bytes"
	"testing"
)

func TestValidateInputRejectsInvalidUTF8(t *testing.T) {
	data := []byte{0xff, 0xfe, 0xfd}
	if err := ValidateInput(data); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestValidateInputRejectsBinary(t *testing.T) {
	data := append([]byte("hello"), 0x00)
	if err := ValidateInput(data); err != ErrBinaryInput {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
	noisy := bytes.Repeat([]byte{'a', 'b', 'c', 0x01}, 32)
	if err := ValidateInput(noisy); err != ErrBinaryInput {
		t.Fatalf("expected ErrBinaryInput for control-heavy input, got %v", err)
	}
}

func TestValidateInputAcceptsText(t *testing.T) {
	data := []byte("# Hi @alice@example.com\n\n\ttabbed\r\nüñí\n")
	if err := ValidateInput(data); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}
