package model

// The carefree preset tables are fixed at compile time and only ever copied
// out, so sharing them between goroutines needs no locking.

var carefreeRepetitionPenaltyWhitelist = [...]int{
	49256, 49264, 49231, 49230, 49287, 85, 49255, 49399, 49262, 336, 333, 432, 363, 468, 492,
	745, 401, 426, 623, 794, 1096, 2919, 2072, 7379, 1259, 2110, 620, 526, 487, 16562, 603,
	805, 761, 2681, 942, 8917, 653, 3513, 506, 5301, 562, 5010, 614, 10942, 539, 2976, 462,
	5189, 567, 2032, 123, 124, 125, 126, 127, 128, 129, 130, 131, 132, 588, 803, 1040, 49209,
	4, 5, 6, 7, 8, 9, 10, 11, 12,
}

var carefreeBadWords = [...][]int{
	{3},
	{49356},
	{1431},
	{31715},
	{34387},
	{20765},
	{30702},
	{10691},
	{49333},
	{1266},
	{19438},
	{43145},
	{26523},
	{41471},
	{2936},
	{85, 85},
	{49332},
	{7286},
	{1115},
}

var carefreeOrder = [...]int{2, 3, 0, 4, 1}

// CarefreeRepetitionPenaltyWhitelist returns a copy of the token IDs exempt
// from repetition penalty in the carefree preset.
func CarefreeRepetitionPenaltyWhitelist() []int {
	out := make([]int, len(carefreeRepetitionPenaltyWhitelist))
	copy(out, carefreeRepetitionPenaltyWhitelist[:])
	return out
}

// CarefreeBadWords returns a copy of the banned token sequences of the
// carefree preset.
func CarefreeBadWords() [][]int {
	out := make([][]int, len(carefreeBadWords))
	for i, seq := range carefreeBadWords {
		out[i] = append([]int(nil), seq...)
	}
	return out
}

// DefaultParameters returns the carefree preset. Every call returns fresh
// slices, so callers may modify the result.
func DefaultParameters() GenerateParameters {
	return GenerateParameters{
		BadWordsIDs: CarefreeBadWords(),
		UseString:   Bool(true),
		LogitBiasExp: []LogitBiasExp{
			NewLogitBiasExp([]int{23}, -0.08),
			NewLogitBiasExp([]int{21}, -0.08),
		},
		Order:                      append([]int(nil), carefreeOrder[:]...),
		RepetitionPenaltyWhitelist: CarefreeRepetitionPenaltyWhitelist(),
		Temperature:                Float(1.35),
		MinLength:                  1,
		MaxLength:                  2048,
		TopK:                       Float(15),
		TopA:                       Float(0.1),
		TopP:                       Float(0.85),
		TypicalP:                   Float(1),
		RepetitionPenalty:          Float(2.8),
		TailFreeSampling:           Float(0.915),
		RepetitionPenaltyRange:     Float(2048),
		RepetitionPenaltySlope:     Float(0.02),
		RepetitionPenaltyFrequency: Float(0.02),
		RepetitionPenaltyPresence:  Float(0),
		CFGScale:                   Float(1),
		TopG:                       Float(0),
		MirostatTau:                Float(0),
		MirostatLR:                 Float(1),
	}
}
