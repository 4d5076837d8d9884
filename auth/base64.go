package auth

import "fmt"

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const base64Pad = '='

var base64Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		idx[base64Alphabet[i]] = int8(i)
	}
	return idx
}()

// EncodeBase64 encodes src with the standard alphabet and '=' padding.
// Every 3 input bytes become 4 output characters; a trailing group of 1 or 2
// bytes is zero-filled and padded with 2 or 1 '=' respectively.
func EncodeBase64(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	dst := make([]byte, (len(src)+2)/3*4)
	di := 0
	for si := 0; si < len(src); si += 3 {
		var group [3]byte
		n := copy(group[:], src[si:])

		v := uint(group[0])<<16 | uint(group[1])<<8 | uint(group[2])
		dst[di] = base64Alphabet[v>>18&0x3f]
		dst[di+1] = base64Alphabet[v>>12&0x3f]
		dst[di+2] = base64Alphabet[v>>6&0x3f]
		dst[di+3] = base64Alphabet[v&0x3f]

		switch n {
		case 1:
			dst[di+2] = base64Pad
			dst[di+3] = base64Pad
		case 2:
			dst[di+3] = base64Pad
		}
		di += 4
	}
	return string(dst)
}

// DecodeBase64 decodes padded standard-alphabet base64 produced by
// EncodeBase64. Input length must be a multiple of 4.
func DecodeBase64(s string) ([]byte, error) {
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("auth: base64 length %d is not a multiple of 4", len(s))
	}
	dst := make([]byte, 0, len(s)/4*3)
	for i := 0; i < len(s); i += 4 {
		last := i+4 == len(s)
		var v uint
		pad := 0
		for j := 0; j < 4; j++ {
			c := s[i+j]
			if c == base64Pad {
				if !last || j < 2 {
					return nil, fmt.Errorf("auth: unexpected padding at offset %d", i+j)
				}
				pad++
				v <<= 6
				continue
			}
			if pad > 0 {
				return nil, fmt.Errorf("auth: data after padding at offset %d", i+j)
			}
			d := base64Index[c]
			if d < 0 {
				return nil, fmt.Errorf("auth: illegal base64 character %q at offset %d", c, i+j)
			}
			v = v<<6 | uint(d)
		}
		dst = append(dst, byte(v>>16), byte(v>>8), byte(v))
		dst = dst[:len(dst)-pad]
	}
	return dst, nil
}
