package labeler

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Label identifies one coding category.
type Label string

const (
	LabelVP   Label = "VP"    // vote pledge
	LabelEInt Label = "E_int" // internal efficacy
	LabelEExt Label = "E_ext" // external efficacy
	LabelCyn  Label = "Cyn"   // cynicism
	LabelNorm Label = "Norm"  // normative appeal
	LabelInfo Label = "Info"  // information seeking
	LabelMobi Label = "Mobi"  // mobilization
)

// Labels is the fixed category order used for sheet columns and traces.
var Labels = []Label{LabelVP, LabelEInt, LabelEExt, LabelCyn, LabelNorm, LabelInfo, LabelMobi}

// Dictionary is the keyword configuration for the labeler. It is data, not
// code: researchers amend the YAML file without touching resolver logic.
type Dictionary struct {
	VP          []string `yaml:"vp"`
	EExt        []string `yaml:"e_ext"`
	EInt        []string `yaml:"e_int"`
	Cyn         []string `yaml:"cyn"`
	Norm        []string `yaml:"norm"`
	Info        []string `yaml:"info"`
	Mobi        []string `yaml:"mobi"`
	VPNegations []string `yaml:"vp_negations"`
}

// DefaultDictionary returns the built-in keyword sets used by the pilot study.
func DefaultDictionary() *Dictionary {
	return &Dictionary{
		VP: []string{
			"投票行く", "投票いく", "投票いき", "投票に行", "行ってくる", "行ってきた",
			"投票した", "期日前", "投票する", "選挙行", "投票所",
			"投票済", "投票しよう",
		},
		EExt: []string{
			"一票でも", "変えられる", "声が届く",
			"政治を変える", "社会を変える", "民主主義", "主権在民",
			"私たちの声",
		},
		EInt: []string{
			"調べる", "調べて", "調べた", "勉強する", "ちゃんと考え",
			"理解して", "判断する", "情報収集", "比較して",
		},
		Cyn: []string{
			"どうせ変わらない", "意味ない", "無駄", "変わらん",
			"茶番", "出来レース", "利権", "癒着", "腐って",
		},
		Norm: []string{
			"行くべき", "行かなきゃ", "行かないのは", "責任",
			"国民の義務", "権利を行使",
		},
		Info: []string{
			"どこで", "やり方", "方法", "候補者", "政策",
			"何時から", "持ち物", "場所", "投票用紙",
		},
		Mobi: []string{
			"みんなで", "一緒に行こう", "友達と", "家族と",
			"声をかけて", "誘って", "広めて", "シェアして",
			"拡散", "周りの人",
		},
		VPNegations: []string{
			"投票行かない", "投票に行かない", "投票しない", "選挙行かない",
			"投票できない", "投票やめ", "投票いかない",
		},
	}
}

// Keywords returns the keyword list for a label.
func (d *Dictionary) Keywords(label Label) []string {
	switch label {
	case LabelVP:
		return d.VP
	case LabelEInt:
		return d.EInt
	case LabelEExt:
		return d.EExt
	case LabelCyn:
		return d.Cyn
	case LabelNorm:
		return d.Norm
	case LabelInfo:
		return d.Info
	case LabelMobi:
		return d.Mobi
	}
	return nil
}

// LoadDictionary reads a keyword dictionary from a YAML file. Categories left
// empty in the file fall back to the built-in defaults so a partial override
// stays usable.
func LoadDictionary(path string) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary file: %w", err)
	}
	defer file.Close()

	dict := &Dictionary{}
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(dict); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary file: %w", err)
	}

	defaults := DefaultDictionary()
	if len(dict.VP) == 0 {
		dict.VP = defaults.VP
	}
	if len(dict.EExt) == 0 {
		dict.EExt = defaults.EExt
	}
	if len(dict.EInt) == 0 {
		dict.EInt = defaults.EInt
	}
	if len(dict.Cyn) == 0 {
		dict.Cyn = defaults.Cyn
	}
	if len(dict.Norm) == 0 {
		dict.Norm = defaults.Norm
	}
	if len(dict.Info) == 0 {
		dict.Info = defaults.Info
	}
	if len(dict.Mobi) == 0 {
		dict.Mobi = defaults.Mobi
	}
	if len(dict.VPNegations) == 0 {
		dict.VPNegations = defaults.VPNegations
	}

	return dict, nil
}
