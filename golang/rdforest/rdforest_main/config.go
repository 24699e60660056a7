package main

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/tarstars/random_decision_forest/golang/rdforest/rdf"
)

var validate = validator.New()

var configDefaults = map[string]interface{}{
	"log_level":           "info",
	"max_depth":           10,
	"tests_per_level":     100,
	"trees":               10,
	"threads_num":         0,
	"oblique_probability": 0.0,
	"show_progress":       false,
	"figure_type":         "svg",
	"pictures_directory":  ".",
	"dump_prefix":         "tree",
}

//LogConfig is shared by all commands.
type LogConfig struct {
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

//TestConfig names a labelled data set scored after training.
type TestConfig struct {
	Description        string `mapstructure:"description"`
	FileNameTestInputs string `mapstructure:"filename_test_inputs" validate:"required"`
	FileNameTestLabels string `mapstructure:"filename_test_labels" validate:"required"`
}

type TrainConfig struct {
	LogConfig              `mapstructure:",squash"`
	rdf.TrainingParameters `mapstructure:",squash"`

	FileNameTrainInputs string       `mapstructure:"filename_train_inputs" validate:"required"`
	FileNameTrainLabels string       `mapstructure:"filename_train_labels" validate:"required"`
	Tests               []TestConfig `mapstructure:"tests" validate:"dive"`
	FileNameModel       string       `mapstructure:"filename_model" validate:"required"`
	ObliqueProbability  float64      `mapstructure:"oblique_probability" validate:"min=0,max=1"`
	ThreadsNum          int          `mapstructure:"threads_num" validate:"min=0"`
	Seed                *uint64      `mapstructure:"seed"`
	ShowProgress        bool         `mapstructure:"show_progress"`
}

type PredictConfig struct {
	LogConfig `mapstructure:",squash"`

	DataFileName       string `mapstructure:"filename_inputs" validate:"required"`
	ModelFileName      string `mapstructure:"filename_model" validate:"required"`
	PredictionFileName string `mapstructure:"filename_prediction" validate:"required"`
	TreeProbabilities  bool   `mapstructure:"tree_probabilities"`
}

type LcurveConfig struct {
	LogConfig `mapstructure:",squash"`

	DataFileName          string `mapstructure:"filename_inputs" validate:"required"`
	LabelsFileName        string `mapstructure:"filename_labels" validate:"required"`
	ModelFileName         string `mapstructure:"filename_model" validate:"required"`
	LearningCurveFileName string `mapstructure:"filename_learning_curve" validate:"required"`
}

type GraphConfig struct {
	LogConfig `mapstructure:",squash"`

	ModelFileName     string `mapstructure:"filename_model" validate:"required"`
	FigureType        string `mapstructure:"figure_type" validate:"oneof=png svg jpg"`
	PicturesDirectory string `mapstructure:"pictures_directory" validate:"required"`
	DumpPrefix        string `mapstructure:"dump_prefix" validate:"required"`
}

//decodeConfig reads a JSON config file. Any key can be overridden by an RDF_ environment variable.
func decodeConfig(srcConfig string, out interface{}) error {
	v := viper.New()
	v.SetConfigFile(srcConfig)
	v.SetConfigType("json")
	v.SetEnvPrefix("RDF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config %s", srcConfig)
	}
	if err := v.Unmarshal(out); err != nil {
		return errors.Wrapf(err, "decode config %s", srcConfig)
	}
	if err := validate.Struct(out); err != nil {
		return errors.Wrapf(rdf.ErrInvalidConfig, "config %s: %v", srcConfig, err)
	}
	return nil
}
