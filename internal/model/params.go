package model

// LogitBiasExp biases a token sequence during sampling.
type LogitBiasExp struct {
	Sequence             []int   `json:"sequence"`
	Bias                 float64 `json:"bias"`
	EnsureSequenceFinish *bool   `json:"ensure_sequence_finish,omitempty"`
	GenerateOnce         *bool   `json:"generate_once,omitempty"`
}

// NewLogitBiasExp creates a bias entry with both flags explicitly off.
func NewLogitBiasExp(sequence []int, bias float64) LogitBiasExp {
	return LogitBiasExp{
		Sequence:             sequence,
		Bias:                 bias,
		EnsureSequenceFinish: Bool(false),
		GenerateOnce:         Bool(false),
	}
}

// GenerateParameters are the sampling parameters of a text generation request.
// Nil fields are left out of the request so the server applies its own
// defaults; MinLength and MaxLength are always sent.
type GenerateParameters struct {
	StopSequences              [][]int        `json:"stop_sequences,omitempty"`
	BadWordsIDs                [][]int        `json:"bad_words_ids,omitempty"`
	UseString                  *bool          `json:"use_string,omitempty"` // false: input and output are base64 uint16 token arrays
	LogitBias                  [][]int        `json:"logit_bias,omitempty"`
	LogitBiasExp               []LogitBiasExp `json:"logit_bias_exp,omitempty"`
	Order                      []int          `json:"order,omitempty"`
	RepetitionPenaltyWhitelist []int          `json:"repetition_penalty_whitelist,omitempty"`
	Temperature                *float64       `json:"temperature,omitempty"`
	MinLength                  uint32         `json:"min_length"`
	MaxLength                  uint32         `json:"max_length"`
	DoSample                   *bool          `json:"do_sample,omitempty"`
	EarlyStopping              *bool          `json:"early_stopping,omitempty"`
	NumBeams                   *float64       `json:"num_beams,omitempty"`
	TopK                       *float64       `json:"top_k,omitempty"`
	TopA                       *float64       `json:"top_a,omitempty"`
	TopP                       *float64       `json:"top_p,omitempty"`
	TypicalP                   *float64       `json:"typical_p,omitempty"`
	RepetitionPenalty          *float64       `json:"repetition_penalty,omitempty"`
	PadTokenID                 *float64       `json:"pad_token_id,omitempty"`
	BOSTokenID                 *float64       `json:"bos_token_id,omitempty"`
	EOSTokenID                 *float64       `json:"eos_token_id,omitempty"`
	LengthPenalty              *float64       `json:"length_penalty,omitempty"`
	NoRepeatNgramSize          *float64       `json:"no_repeat_ngram_size,omitempty"`
	EncoderNoRepeatNgramSize   *float64       `json:"encoder_no_repeat_ngram_size,omitempty"`
	NumReturnSequences         *float64       `json:"num_return_sequences,omitempty"`
	MaxTime                    *float64       `json:"max_time,omitempty"`
	UseCache                   *bool          `json:"use_cache,omitempty"`
	NumBeamGroups              *float64       `json:"num_beam_groups,omitempty"`
	DiversityPenalty           *float64       `json:"diversity_penalty,omitempty"`
	TailFreeSampling           *float64       `json:"tail_free_sampling,omitempty"`
	RepetitionPenaltyRange     *float64       `json:"repetition_penalty_range,omitempty"`
	RepetitionPenaltySlope     *float64       `json:"repetition_penalty_slope,omitempty"`
	GetHiddenStates            *bool          `json:"get_hidden_states,omitempty"`
	RepetitionPenaltyFrequency *float64       `json:"repetition_penalty_frequency,omitempty"`
	RepetitionPenaltyPresence  *float64       `json:"repetition_penalty_presence,omitempty"`
	NextWord                   *bool          `json:"next_word,omitempty"`
	Prefix                     *string        `json:"prefix,omitempty"`
	OutputNonzeroProbs         *bool          `json:"output_nonzero_probs,omitempty"`
	GenerateUntilSentence      *bool          `json:"generate_until_sentence,omitempty"`
	NumLogprobs                *float64       `json:"num_logprobs,omitempty"`
	CFGUc                      *string        `json:"cfg_uc,omitempty"`
	CFGScale                   *float64       `json:"cfg_scale,omitempty"`
	CFGAlpha                   *float64       `json:"cfg_alpha,omitempty"`
	PhraseRepPen               *string        `json:"phrase_rep_pen,omitempty"`
	TopG                       *float64       `json:"top_g,omitempty"`
	MirostatTau                *float64       `json:"mirostat_tau,omitempty"`
	MirostatLR                 *float64       `json:"mirostat_lr,omitempty"`
}

// GenerateRequest is the body of a text generation call.
type GenerateRequest struct {
	Input      string             `json:"input"`
	Model      TextModel          `json:"model"`
	Parameters GenerateParameters `json:"parameters"`
}

// NewGenerateRequest creates a request for input using the default model and
// the carefree parameter preset.
func NewGenerateRequest(input string) GenerateRequest {
	return GenerateRequest{
		Input:      input,
		Model:      DefaultTextModel,
		Parameters: DefaultParameters(),
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
