// Command scoreform runs the structural analyzer, DTW aligner, and visual
// preference recommender over a parsed score (and optionally an aligned
// audio feature stream), persisting session state between invocations as a
// JSON file so the cascade does not need to be re-run on every command.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/logging"
	"github.com/RyanBlaney/scoreform-go/model"
	"github.com/RyanBlaney/scoreform-go/session"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "scoreform",
	Short:   "Structural analysis, score-to-audio alignment, and visual recommendations",
	Version: version,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the structural cascade over a parsed score",
	Long: `Build the motive-through-form structure tree for a score and save
session state for later alignment or recommendation commands.

Example:
  scoreform analyze --score score.json --state session.json`,
	RunE: runAnalyze,
}

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align score measures to audio timestamps via DTW",
	Long: `Read an existing session (from analyze) and an audio feature
stream, and compute the measure-to-time mapping.

Example:
  scoreform align --state session.json --audio features.json`,
	RunE: runAlign,
}

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Manually override the alignment for one measure",
	Long: `Apply a manual correction to the measure-to-time mapping produced
by align, penalizing the alignment confidence.

Example:
  scoreform adjust --state session.json --measure 17 --time 42.5`,
	RunE: runAdjust,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get visual scheme recommendations for a structure node",
	Long: `Return ranked visual schemes for a node and write the top-ranked
one back to the state file. The preference learner is not kept in the
state file, so selections made with record do not change later rankings.

Example:
  scoreform recommend --state session.json --node phrase-42 --count 3`,
	RunE: runRecommend,
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a user's accept/modify/reject decision on a scheme",
	Long: `Feed a recommendation decision back into the preference learner
and add it to the session's action history. Only the top-ranked scheme of
the last recommend call is kept in the state file, so that is the scheme
id this command can find.

Example:
  scoreform record --state session.json --node phrase-42 --scheme phrase-42-v0 --action accept`,
	RunE: runRecord,
}

var (
	scorePath    string
	audioPath    string
	statePath    string
	outPath      string
	nodeID       string
	schemeID     string
	action       string
	count        int
	measure      int
	atTime       float64
	chunkMeasures int
	verbose      bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd, alignCmd, adjustCmd, recommendCmd, recordCmd)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	analyzeCmd.Flags().StringVar(&scorePath, "score", "", "path to a ParsedScore JSON file (required)")
	analyzeCmd.Flags().StringVar(&statePath, "state", "session.json", "session state file to write")
	analyzeCmd.Flags().IntVar(&chunkMeasures, "chunk-measures", 0, "override the chunk-driver measure window (0 keeps the default)")
	analyzeCmd.MarkFlagRequired("score")

	alignCmd.Flags().StringVar(&statePath, "state", "session.json", "session state file to read and update")
	alignCmd.Flags().StringVar(&audioPath, "audio", "", "path to an AudioFeatureStream JSON file (required)")
	alignCmd.MarkFlagRequired("audio")

	adjustCmd.Flags().StringVar(&statePath, "state", "session.json", "session state file to read and update")
	adjustCmd.Flags().IntVar(&measure, "measure", 0, "measure number to correct (required)")
	adjustCmd.Flags().Float64Var(&atTime, "time", 0, "corrected timestamp in seconds (required)")
	adjustCmd.MarkFlagRequired("measure")
	adjustCmd.MarkFlagRequired("time")

	recommendCmd.Flags().StringVar(&statePath, "state", "session.json", "session state file to read and update")
	recommendCmd.Flags().StringVar(&nodeID, "node", "", "structure node id (required)")
	recommendCmd.Flags().IntVar(&count, "count", 3, "number of schemes to return")
	recommendCmd.MarkFlagRequired("node")

	recordCmd.Flags().StringVar(&statePath, "state", "session.json", "session state file to read and update")
	recordCmd.Flags().StringVar(&nodeID, "node", "", "structure node id (required)")
	recordCmd.Flags().StringVar(&schemeID, "scheme", "", "scheme id returned by recommend (required)")
	recordCmd.Flags().StringVar(&action, "action", "accept", "accept, modify, or reject")
	recordCmd.MarkFlagRequired("node")
	recordCmd.MarkFlagRequired("scheme")
}

func newLogger() logging.Logger {
	if !verbose {
		return &logging.NoOpLogger{}
	}
	return logging.NewDefaultLogger()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	score, err := readScore(scorePath)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if chunkMeasures > 0 {
		cfg.Analysis.ChunkMeasures = chunkMeasures
	}

	s := session.NewSession(newSessionID(), cfg, newLogger())
	analysis, err := s.AnalyzeComplete(score)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if err := saveState(s, statePath); err != nil {
		return err
	}

	fmt.Printf("analyzed %d measures: %d motives, %d phrases, %d periods, form %s\n",
		len(score.Measures), analysis.Statistics.MotiveCount, analysis.Statistics.PhraseCount,
		analysis.Statistics.PeriodCount, analysis.Form.FormType)
	fmt.Printf("session written to %s\n", statePath)
	return nil
}

func runAlign(cmd *cobra.Command, args []string) error {
	s, err := loadState(statePath)
	if err != nil {
		return err
	}

	audio, err := readAudio(audioPath)
	if err != nil {
		return err
	}

	result, err := s.Align(audio)
	if err != nil {
		return fmt.Errorf("align: %w", err)
	}

	if err := saveState(s, statePath); err != nil {
		return err
	}

	fmt.Printf("aligned %d measures, confidence %.2f\n", len(result.MeasureToTime), result.Confidence)
	return nil
}

func runAdjust(cmd *cobra.Command, args []string) error {
	s, err := loadState(statePath)
	if err != nil {
		return err
	}
	s.AdjustAlignment(measure, atTime)
	if err := saveState(s, statePath); err != nil {
		return err
	}
	fmt.Printf("measure %d set to %.3fs\n", measure, atTime)
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	s, err := loadState(statePath)
	if err != nil {
		return err
	}

	schemes, err := s.GetRecommendations(model.NodeID(nodeID), count)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := saveState(s, statePath); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(schemes)
}

func runRecord(cmd *cobra.Command, args []string) error {
	s, err := loadState(statePath)
	if err != nil {
		return err
	}
	if err := s.RecordSelection(model.NodeID(nodeID), schemeID, action); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return saveState(s, statePath)
}

func newSessionID() string {
	return fmt.Sprintf("cli-%d", os.Getpid())
}

func readScore(path string) (*model.ParsedScore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read score: %w", err)
	}
	var score model.ParsedScore
	if err := json.Unmarshal(data, &score); err != nil {
		return nil, fmt.Errorf("parse score: %w", err)
	}
	return &score, nil
}

func readAudio(path string) (*model.AudioFeatureStream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio features: %w", err)
	}
	var stream model.AudioFeatureStream
	if err := json.Unmarshal(data, &stream); err != nil {
		return nil, fmt.Errorf("parse audio features: %w", err)
	}
	return &stream, nil
}

func saveState(s *session.Session, path string) error {
	state, err := s.Export()
	if err != nil {
		return fmt.Errorf("export session: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func loadState(path string) (*session.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var state model.PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	s := session.NewSession(state.Session.SessionID, config.DefaultConfig(), newLogger())
	if err := s.Import(&state); err != nil {
		return nil, fmt.Errorf("import session: %w", err)
	}
	return s, nil
}
