package layers

// SynthesisItemID is the misc item that switches an avatar to the flat asset
// set. It is consumed as a mode toggle and never drawn.
const SynthesisItemID = 211

// flatArtwork lists the dynamic item ids that have flat (2D) artwork.
var flatArtwork = map[uint64]struct{}{
	1: {}, 2: {}, 3: {}, 4: {}, 5: {}, 6: {}, 7: {}, 8: {}, 9: {}, 10: {},
	11: {}, 12: {}, 13: {}, 14: {}, 15: {}, 16: {}, 18: {}, 19: {}, 20: {},
	21: {}, 22: {}, 24: {}, 25: {}, 27: {}, 28: {}, 30: {}, 31: {}, 33: {},
	34: {}, 35: {}, 36: {}, 38: {}, 40: {}, 41: {}, 42: {}, 44: {}, 45: {},
	47: {}, 48: {}, 50: {}, 51: {}, 52: {}, 55: {}, 56: {}, 57: {}, 60: {},
	61: {}, 63: {}, 64: {}, 66: {}, 67: {}, 70: {}, 72: {}, 73: {}, 75: {},
	76: {}, 78: {}, 80: {}, 81: {}, 83: {}, 84: {}, 86: {}, 88: {}, 90: {},
	91: {}, 93: {}, 95: {}, 96: {}, 98: {}, 100: {}, 101: {}, 103: {},
	104: {}, 106: {}, 108: {}, 110: {}, 112: {}, 113: {}, 115: {}, 117: {},
	118: {}, 120: {}, 122: {}, 124: {}, 125: {}, 127: {}, 130: {}, 131: {},
	133: {}, 135: {}, 136: {}, 138: {}, 140: {}, 142: {}, 144: {}, 145: {},
	147: {}, 150: {}, 152: {}, 153: {}, 155: {}, 158: {}, 160: {}, 161: {},
	163: {}, 165: {}, 168: {}, 170: {}, 172: {}, 175: {}, 177: {}, 180: {},
	182: {}, 185: {}, 187: {}, 190: {}, 192: {}, 195: {}, 198: {}, 200: {},
	202: {}, 205: {}, 207: {}, 210: {}, 212: {}, 214: {}, 216: {}, 218: {},
	220: {}, 223: {}, 225: {}, 228: {}, 230: {}, 233: {}, 236: {}, 240: {},
	244: {}, 248: {}, 250: {}, 301: {}, 302: {}, 305: {}, 310: {}, 318: {},
	325: {}, 333: {}, 340: {}, 355: {}, 370: {}, 402: {}, 404: {}, 420: {},
}

// HasFlatArtwork reports whether a dynamic item can be drawn in flat mode.
func HasFlatArtwork(id uint64) bool {
	_, ok := flatArtwork[id]
	return ok
}
