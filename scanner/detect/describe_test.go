package detect_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexinsight/apexinsight/scanner/apex"
	"github.com/apexinsight/apexinsight/scanner/detect"
	"github.com/apexinsight/apexinsight/scanner/finding"
)

func parseClass(t *testing.T, className, source string) *apex.File {
	t.Helper()
	file, err := apex.Parse(context.Background(), className, []byte(source))
	require.NoError(t, err)
	return file
}

func TestGlobalDescribeDetector(t *testing.T) {
	source := `public class SchemaUsage {
    public void describeOnce() {
        Map<String, Schema.SObjectType> types = Schema.getGlobalDescribe();
        System.debug(types);
    }

    public void describeRepeatedly(List<String> names) {
        Integer i = 0;
        while (i < names.size()) {
            Map<String, Schema.SObjectType> types = Schema.getGlobalDescribe();
            System.debug(types.get(names.get(i)));
            i++;
        }
    }

    public void unrelated(SchemaHelper helper) {
        helper.getGlobalDescribe();
    }
}`

	file := parseClass(t, "SchemaUsage", source)
	detector := detect.NewGlobalDescribeDetector()
	assert.Equal(t, detect.TypeGlobalDescribe, detector.Type())

	instances := detector.Detect(file)
	require.Len(t, instances, 2)

	outside := instances[0]
	assert.Equal(t, "SchemaUsage", outside.ClassName)
	assert.Equal(t, "describeOnce", outside.MethodName)
	assert.Equal(t, 3, outside.LineNumber)
	assert.Equal(t, finding.SeverityMedium, outside.Severity)
	assert.Equal(t, finding.SourceStatic, outside.SeveritySource)
	assert.Equal(t, false, outside.Metadata["inLoop"])

	inLoop := instances[1]
	assert.Equal(t, "describeRepeatedly", inLoop.MethodName)
	assert.Equal(t, 10, inLoop.LineNumber)
	assert.Equal(t, finding.SeverityHigh, inLoop.Severity)
	assert.Equal(t, true, inLoop.Metadata["inLoop"])
	assert.Equal(t, 1, inLoop.Metadata["loopDepth"])
}

func TestGlobalDescribeDetector_CaseInsensitive(t *testing.T) {
	source := `public class MixedCase {
    public void m() {
        schema.GETGLOBALDESCRIBE();
    }
}`

	file := parseClass(t, "MixedCase", source)
	instances := detect.NewGlobalDescribeDetector().Detect(file)
	require.Len(t, instances, 1)
	assert.Equal(t, finding.SeverityMedium, instances[0].Severity)
}

func TestGlobalDescribeDetector_NoMatches(t *testing.T) {
	source := `public class Quiet {
    public void m() {
        List<Account> accs = [SELECT Id FROM Account LIMIT 1];
        System.debug(accs);
    }
}`

	file := parseClass(t, "Quiet", source)
	assert.Empty(t, detect.NewGlobalDescribeDetector().Detect(file))
}
