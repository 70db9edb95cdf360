package nodes

import (
	"context"
	"fmt"
	"restaurant_chat/src/logger"
	"restaurant_chat/src/model"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

// AnalyzeToolName is the name the model calls the data tool by
const AnalyzeToolName = "analyze_apis"

const analyzeToolDescription = "Decide which restaurant data sources are needed to answer the manager's question and fetch them. " +
	"Mark every source with use and a short reason. Add timeFilter when the question names a period."

// DataCollector fetches report data for the domains an analysis selected
type DataCollector interface {
	Collect(ctx context.Context, analysis model.ToolAnalysisResult) string
}

// AnalyzeTool creates the single data tool using Eino's InferTool. Its input
// schema is inferred from model.ToolAnalysisResult.
func AnalyzeTool(collector DataCollector) (tool.InvokableTool, error) {
	analyze, err := utils.InferTool(AnalyzeToolName, analyzeToolDescription,
		func(ctx context.Context, analysis *model.ToolAnalysisResult) (string, error) {
			if analysis == nil {
				return "", fmt.Errorf("empty analysis")
			}

			selected := analysis.Selected()
			event := logger.Info().Int("domains", len(selected))
			if analysis.TimeFilter != nil {
				event = event.Str("time_filter", string(analysis.TimeFilter.Type))
			}
			event.Msgf("analyze_apis selected %v", selected)

			return collector.Collect(ctx, *analysis), nil
		})
	if err != nil {
		return nil, fmt.Errorf("error creating %s tool: %w", AnalyzeToolName, err)
	}
	return analyze, nil
}

// GetTools returns every tool the assistant may call
func GetTools(collector DataCollector) ([]tool.InvokableTool, error) {
	analyze, err := AnalyzeTool(collector)
	if err != nil {
		return nil, err
	}
	return []tool.InvokableTool{analyze}, nil
}
