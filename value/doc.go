// Package value interprets the bytes of a single FIT field.
//
// A Value is a view over the original record bytes together with the field's
// declared base type and the byte order of its definition. Nothing is copied
// when a Value is created: the accessors reinterpret the underlying bytes on
// demand, so a Value is only valid for as long as the caller keeps the backing
// buffer alive (for decoder events, until the next call to Next).
//
// # Invalid Values
//
// Every base type reserves a bit pattern meaning "no value":
//
//	Base type                    | Invalid pattern
//	-----------------------------|-----------------------------------
//	enum, uint8, byte            | 0xFF
//	uint16, uint32, uint64       | all bits set
//	uint8z ... uint64z           | zero
//	sint8 ... sint64             | maximum positive value (0x7F...)
//	float32, float64             | all bits set
//	string                       | 0x00
//
// Numeric fields whose size is a multiple of the element width are arrays, and
// each element is checked on its own. String fields are valid when their first
// byte is not NUL; byte fields are invalid only when every byte is 0xFF. A field
// whose size is not a multiple of its base type width is exposed as a byte array.
package value
