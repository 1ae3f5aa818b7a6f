package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionFormatVersionV1 = 1

const flagTwoFactorEnabled = 1 << 0

func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionV1)

	for _, field := range []struct {
		name  string
		value string
	}{
		{"userID", s.UserID},
		{"email", s.Email},
		{"name", s.Name},
	} {
		if len(field.value) > 255 {
			return nil, errors.New(field.name + " too long")
		}
		buf.WriteByte(byte(len(field.value)))
		buf.WriteString(field.value)
	}

	var flags byte
	if s.TwoFactorEnabled {
		flags |= flagTwoFactorEnabled
	}
	buf.WriteByte(flags)

	if err := binary.Write(&buf, binary.BigEndian, s.EmailVerifiedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionV1 {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	for _, field := range []*string{&s.UserID, &s.Email, &s.Name} {
		fieldLen, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}
		raw := make([]byte, fieldLen)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		*field = string(raw)
	}

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	s.TwoFactorEnabled = flags&flagTwoFactorEnabled != 0

	if err := binary.Read(reader, binary.BigEndian, &s.EmailVerifiedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	return s, nil
}
