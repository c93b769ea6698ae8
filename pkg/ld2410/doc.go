// Package ld2410 decodes reports of the HLK-LD2410 mmWave radar.
//
// The radar streams frames over a UART without any out-of-band framing:
//
//	F4 F3 F2 F1 | LEN (u16 LE) | PAYLOAD (LEN bytes) | F8 F7 F6 F5
//
// Command/ACK frames use the FD FC FB FA / 04 03 02 01 markers instead.
// The Decoder consumes the stream one byte at a time and recovers from
// byte loss and corrupted frames by resynchronizing on the next header,
// so a single bad frame never desynchronizes the stream.
//
// Producer: LD2410 firmware
// Consumer: device.Ingestor
package ld2410
