package rdf

import (
	"github.com/go-playground/validator/v10"
)

const (
	//MaxTreeDepth bounds the arena of a tree to 2^31 slots.
	MaxTreeDepth = 30
	//MinInformationGain is the gain below which a node deeper than the first level stops growing.
	MinInformationGain = 0.01
)

//TrainingParameters collect the arguments shared by all trainers of a forest.
type TrainingParameters struct {
	MaxDepth      int `json:"max_depth" mapstructure:"max_depth" validate:"min=0,max=30"`
	TestsPerLevel int `json:"tests_per_level" mapstructure:"tests_per_level" validate:"min=1"`
	Trees         int `json:"trees" mapstructure:"trees" validate:"min=0"`
}

var validate = validator.New()

//Validate checks the parameters for a single tree.
func (p TrainingParameters) Validate() error {
	if err := validate.Struct(p); err != nil {
		return invalidConfig("training parameters: %v", err)
	}
	return nil
}
