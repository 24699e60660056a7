package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/random_decision_forest/golang/rdforest/classify"
	"github.com/tarstars/random_decision_forest/golang/rdforest/rdf"
)

func loadClassifier(fileName string, logger *zap.Logger) (*classify.Classifier, error) {
	source, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	clf, err := classify.LoadClassifier(source, rdf.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrapf(err, "load model %s", fileName)
	}
	logger.Info("model loaded", zap.String("file", fileName), zap.Int("trees", clf.Forest().NumTrees()), zap.Int("classes", clf.NumClasses()))
	return clf, nil
}

func saveClassifier(fileName string, clf *classify.Classifier) (err error) {
	dest, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dest.Close(); err == nil {
			err = closeErr
		}
	}()
	return clf.Save(dest)
}

func train(srcConfig string) error {
	var trainConfig TrainConfig
	if err := decodeConfig(srcConfig, &trainConfig); err != nil {
		return err
	}
	logger, err := newLogger(trainConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, numClasses, err := classify.LoadNpy(trainConfig.FileNameTrainInputs, trainConfig.FileNameTrainLabels)
	if err != nil {
		return err
	}
	logger.Info("train set loaded", zap.Int("points", len(data)), zap.Int("classes", numClasses))

	opts := []rdf.Option{rdf.WithLogger(logger)}
	if trainConfig.Seed != nil {
		opts = append(opts, rdf.WithSeed(*trainConfig.Seed))
	}
	clf, err := classify.NewClassifier(numClasses, opts...)
	if err != nil {
		return err
	}
	sampler, err := classify.NewSampler(data, trainConfig.ObliqueProbability)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := clf.Train(data, trainConfig.TrainingParameters, sampler, trainConfig.ThreadsNum, trainConfig.ShowProgress); err != nil {
		return err
	}
	logger.Info("forest trained", zap.Int("trees", clf.Forest().NumTrees()), zap.Duration("elapsed", time.Since(start)))

	for _, testConfig := range append([]TestConfig{{Description: "train"}}, trainConfig.Tests...) {
		testData := data
		if testConfig.FileNameTestInputs != "" {
			if testData, _, err = classify.LoadNpy(testConfig.FileNameTestInputs, testConfig.FileNameTestLabels); err != nil {
				return err
			}
		}
		accuracy, err := clf.Accuracy(testData, clf.Forest().NumTrees())
		if err != nil {
			return err
		}
		logger.Info("accuracy", zap.String("set", testConfig.Description), zap.Float64("accuracy", accuracy))
	}

	return saveClassifier(trainConfig.FileNameModel, clf)
}

func predict(srcConfig string) error {
	var predictConfig PredictConfig
	if err := decodeConfig(srcConfig, &predictConfig); err != nil {
		return err
	}
	logger, err := newLogger(predictConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	inputs, err := classify.ReadNpy(predictConfig.DataFileName)
	if err != nil {
		return err
	}
	clf, err := loadClassifier(predictConfig.ModelFileName, logger)
	if err != nil {
		return err
	}

	if predictConfig.TreeProbabilities {
		cube, err := clf.TreeProbabilities(inputs)
		if err != nil {
			return err
		}
		shape := cube.Shape()
		prediction := mat.NewDense(shape[0], shape[1]*shape[2], cube.Data().([]float64))
		logger.Info("per tree probabilities", zap.Ints("shape", shape))
		return classify.SaveNpy(predictConfig.PredictionFileName, prediction)
	}
	proba, err := clf.PredictProba(inputs)
	if err != nil {
		return err
	}
	return classify.SaveNpy(predictConfig.PredictionFileName, proba)
}

func lcurve(srcConfig string) error {
	var lcurveConfig LcurveConfig
	if err := decodeConfig(srcConfig, &lcurveConfig); err != nil {
		return err
	}
	logger, err := newLogger(lcurveConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, _, err := classify.LoadNpy(lcurveConfig.DataFileName, lcurveConfig.LabelsFileName)
	if err != nil {
		return err
	}
	clf, err := loadClassifier(lcurveConfig.ModelFileName, logger)
	if err != nil {
		return err
	}

	curve, err := clf.LearningCurve(data)
	if err != nil {
		return err
	}
	if len(curve) == 0 {
		return errors.Wrap(rdf.ErrInvalidConfig, "model has no trees")
	}
	logger.Info("learning curve", zap.Float64("first", curve[0]), zap.Float64("last", curve[len(curve)-1]))
	return classify.SaveNpy(lcurveConfig.LearningCurveFileName, mat.NewDense(len(curve), 1, curve))
}

func graph(srcConfig string) error {
	var graphConfig GraphConfig
	if err := decodeConfig(srcConfig, &graphConfig); err != nil {
		return err
	}
	logger, err := newLogger(graphConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	clf, err := loadClassifier(graphConfig.ModelFileName, logger)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Clean(graphConfig.PicturesDirectory), 0o755); err != nil {
		return err
	}
	files, err := clf.Forest().RenderTrees(graphConfig.DumpPrefix, graphConfig.FigureType, graphConfig.PicturesDirectory)
	if err != nil {
		return err
	}
	logger.Info("trees rendered", zap.Int("files", len(files)), zap.String("directory", graphConfig.PicturesDirectory))
	return nil
}

func modeCmd(use, short string, run func(string) error) *cobra.Command {
	var config string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(config)
		},
	}
	cmd.Flags().StringVar(&config, "config", "rdf_config.json", "a config file for the run of the program")
	return cmd
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rdforest",
		Short:         "random decision forest classifier over npy data sets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		modeCmd("train", "grow a forest and save it as an XML model", train),
		modeCmd("predict", "write class probabilities of a model as npy", predict),
		modeCmd("graph", "render every tree of a model with graphviz", graph),
		modeCmd("lcurve", "write accuracy against the number of trees as npy", lcurve),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rdforest:", err)
		os.Exit(1)
	}
}
