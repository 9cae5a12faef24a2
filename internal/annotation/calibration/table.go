package calibration

// Metres per unscaled document pixel, keyed by sheet size ("WxH", whole
// inches, long side first) and then by drawing scale ratio ("100" for 1:100).
// A sheet is laid out 1000 document pixels along its long side.
var sizeTables = map[string]map[string]float64{
	"11x9": {
		"1":    0.0002794,
		"5":    0.001397,
		"10":   0.002794,
		"20":   0.005588,
		"25":   0.006985,
		"50":   0.01397,
		"75":   0.020955,
		"100":  0.02794,
		"125":  0.034925,
		"200":  0.05588,
		"250":  0.06985,
		"500":  0.1397,
		"1000": 0.2794,
	},
	"12x8": {
		"1":    0.0003048,
		"5":    0.001524,
		"10":   0.003048,
		"20":   0.006096,
		"25":   0.00762,
		"50":   0.01524,
		"75":   0.02286,
		"100":  0.03048,
		"125":  0.0381,
		"200":  0.06096,
		"250":  0.0762,
		"500":  0.1524,
		"1000": 0.3048,
	},
	"12x9": {
		"1":    0.0003048,
		"5":    0.001524,
		"10":   0.003048,
		"20":   0.006096,
		"25":   0.00762,
		"50":   0.01524,
		"75":   0.02286,
		"100":  0.03048,
		"125":  0.0381,
		"200":  0.06096,
		"250":  0.0762,
		"500":  0.1524,
		"1000": 0.3048,
	},
	"14x9": {
		"1":    0.0003556,
		"5":    0.001778,
		"10":   0.003556,
		"20":   0.007112,
		"25":   0.00889,
		"50":   0.01778,
		"75":   0.02667,
		"100":  0.03556,
		"125":  0.04445,
		"200":  0.07112,
		"250":  0.0889,
		"500":  0.1778,
		"1000": 0.3556,
	},
	"17x11": {
		"1":    0.0004318,
		"5":    0.002159,
		"10":   0.004318,
		"20":   0.008636,
		"25":   0.010795,
		"50":   0.02159,
		"75":   0.032385,
		"100":  0.04318,
		"125":  0.053975,
		"200":  0.08636,
		"250":  0.10795,
		"500":  0.2159,
		"1000": 0.4318,
	},
	"17x12": {
		"1":    0.0004318,
		"5":    0.002159,
		"10":   0.004318,
		"20":   0.008636,
		"25":   0.010795,
		"50":   0.02159,
		"75":   0.032385,
		"100":  0.04318,
		"125":  0.053975,
		"200":  0.08636,
		"250":  0.10795,
		"500":  0.2159,
		"1000": 0.4318,
	},
	"18x12": {
		"1":    0.0004572,
		"5":    0.002286,
		"10":   0.004572,
		"20":   0.009144,
		"25":   0.01143,
		"50":   0.02286,
		"75":   0.03429,
		"100":  0.04572,
		"125":  0.05715,
		"200":  0.09144,
		"250":  0.1143,
		"500":  0.2286,
		"1000": 0.4572,
	},
	"22x17": {
		"1":    0.0005588,
		"5":    0.002794,
		"10":   0.005588,
		"20":   0.011176,
		"25":   0.01397,
		"50":   0.02794,
		"75":   0.04191,
		"100":  0.05588,
		"125":  0.06985,
		"200":  0.11176,
		"250":  0.1397,
		"500":  0.2794,
		"1000": 0.5588,
	},
	"23x17": {
		"1":    0.0005842,
		"5":    0.002921,
		"10":   0.005842,
		"20":   0.011684,
		"25":   0.014605,
		"50":   0.02921,
		"75":   0.043815,
		"100":  0.05842,
		"125":  0.073025,
		"200":  0.11684,
		"250":  0.14605,
		"500":  0.2921,
		"1000": 0.5842,
	},
	"24x18": {
		"1":    0.0006096,
		"5":    0.003048,
		"10":   0.006096,
		"20":   0.012192,
		"25":   0.01524,
		"50":   0.03048,
		"75":   0.04572,
		"100":  0.06096,
		"125":  0.0762,
		"200":  0.12192,
		"250":  0.1524,
		"500":  0.3048,
		"1000": 0.6096,
	},
	"33x23": {
		"1":    0.0008382,
		"5":    0.004191,
		"10":   0.008382,
		"20":   0.016764,
		"25":   0.020955,
		"50":   0.04191,
		"75":   0.062865,
		"100":  0.08382,
		"125":  0.104775,
		"200":  0.16764,
		"250":  0.20955,
		"500":  0.4191,
		"1000": 0.8382,
	},
	"34x22": {
		"1":    0.0008636,
		"5":    0.004318,
		"10":   0.008636,
		"20":   0.017272,
		"25":   0.02159,
		"50":   0.04318,
		"75":   0.06477,
		"100":  0.08636,
		"125":  0.10795,
		"200":  0.17272,
		"250":  0.2159,
		"500":  0.4318,
		"1000": 0.8636,
	},
	"36x24": {
		"1":    0.0009144,
		"5":    0.004572,
		"10":   0.009144,
		"20":   0.018288,
		"25":   0.02286,
		"50":   0.04572,
		"75":   0.06858,
		"100":  0.09144,
		"125":  0.1143,
		"200":  0.18288,
		"250":  0.2286,
		"500":  0.4572,
		"1000": 0.9144,
	},
	"42x30": {
		"1":    0.0010668,
		"5":    0.005334,
		"10":   0.010668,
		"20":   0.021336,
		"25":   0.02667,
		"50":   0.05334,
		"75":   0.08001,
		"100":  0.10668,
		"125":  0.13335,
		"200":  0.21336,
		"250":  0.2667,
		"500":  0.5334,
		"1000": 1.0668,
	},
	"44x34": {
		"1":    0.0011176,
		"5":    0.005588,
		"10":   0.011176,
		"20":   0.022352,
		"25":   0.02794,
		"50":   0.05588,
		"75":   0.08382,
		"100":  0.11176,
		"125":  0.1397,
		"200":  0.22352,
		"250":  0.2794,
		"500":  0.5588,
		"1000": 1.1176,
	},
	"47x33": {
		"1":    0.0011938,
		"5":    0.005969,
		"10":   0.011938,
		"20":   0.023876,
		"25":   0.029845,
		"50":   0.05969,
		"75":   0.089535,
		"100":  0.11938,
		"125":  0.149225,
		"200":  0.23876,
		"250":  0.29845,
		"500":  0.5969,
		"1000": 1.1938,
	},
	"48x36": {
		"1":    0.0012192,
		"5":    0.006096,
		"10":   0.012192,
		"20":   0.024384,
		"25":   0.03048,
		"50":   0.06096,
		"75":   0.09144,
		"100":  0.12192,
		"125":  0.1524,
		"200":  0.24384,
		"250":  0.3048,
		"500":  0.6096,
		"1000": 1.2192,
	},
}

// Size-independent fallback for sheets missing above: one document pixel per
// PDF point (72 per inch).
var defaultTable = map[string]float64{
	"1":    0.0003527777778,
	"5":    0.001763888889,
	"10":   0.003527777778,
	"20":   0.007055555556,
	"25":   0.008819444444,
	"50":   0.01763888889,
	"75":   0.02645833333,
	"100":  0.03527777778,
	"125":  0.04409722222,
	"200":  0.07055555556,
	"250":  0.08819444444,
	"500":  0.1763888889,
	"1000": 0.3527777778,
}
