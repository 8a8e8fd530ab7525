package detect

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/apexinsight/apexinsight/scanner/apex"
	"github.com/apexinsight/apexinsight/scanner/finding"
)

// GlobalDescribeDetector reports Schema.getGlobalDescribe() calls. The lookup
// materializes the entire schema registry: tolerable once per transaction,
// expensive when repeated, so severity escalates to HIGH inside a loop body.
type GlobalDescribeDetector struct{}

// NewGlobalDescribeDetector creates the detector. It holds no per-scan state,
// so a single instance is safe to share across concurrent scans.
func NewGlobalDescribeDetector() *GlobalDescribeDetector {
	return &GlobalDescribeDetector{}
}

// Type returns the antipattern type identifier.
func (d *GlobalDescribeDetector) Type() string {
	return TypeGlobalDescribe
}

// Detect walks the tree tracking loop depth and the enclosing method, and
// emits one finding per matching invocation.
func (d *GlobalDescribeDetector) Detect(file *apex.File) []*finding.DetectedAntipattern {
	var instances []*finding.DetectedAntipattern

	file.Walk(func(node *sitter.Node, state apex.WalkState) {
		if node.Type() != "method_invocation" {
			return
		}
		object := node.ChildByFieldName("object")
		name := node.ChildByFieldName("name")
		if object == nil || name == nil {
			return
		}
		if object.Type() != "identifier" {
			return
		}
		if !strings.EqualFold(file.NodeContent(object), "Schema") ||
			!strings.EqualFold(file.NodeContent(name), "getGlobalDescribe") {
			return
		}

		severity := finding.SeverityMedium
		if state.LoopDepth > 0 {
			severity = finding.SeverityHigh
		}
		lineNumber := int(node.StartPoint().Row) + 1

		instances = append(instances, &finding.DetectedAntipattern{
			ClassName:      file.ClassName,
			MethodName:     state.MethodName,
			LineNumber:     lineNumber,
			CodeBefore:     file.Line(lineNumber),
			Severity:       severity,
			SeveritySource: finding.SourceStatic,
			Metadata: map[string]interface{}{
				"inLoop":    state.LoopDepth > 0,
				"loopDepth": state.LoopDepth,
			},
		})
	})

	return instances
}
