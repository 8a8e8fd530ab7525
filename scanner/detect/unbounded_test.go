package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexinsight/apexinsight/scanner/detect"
	"github.com/apexinsight/apexinsight/scanner/finding"
)

func TestUnboundedQueryDetector(t *testing.T) {
	source := `public class AccountReport {
    public void build() {
        List<Account> bounded = [SELECT Id FROM Account LIMIT 200];
        List<Contact> filtered = [SELECT Id FROM Contact WHERE Email != null];
        List<Opportunity> everything = [SELECT Id, Name FROM Opportunity];
        System.debug(bounded);
        System.debug(filtered);
        System.debug(everything);
    }
}`

	file := parseClass(t, "AccountReport", source)
	detector := detect.NewUnboundedQueryDetector()
	assert.Equal(t, detect.TypeUnboundedQuery, detector.Type())

	instances := detector.Detect(file)
	require.Len(t, instances, 1)

	instance := instances[0]
	assert.Equal(t, "AccountReport", instance.ClassName)
	assert.Equal(t, "build", instance.MethodName)
	assert.Equal(t, 5, instance.LineNumber)
	assert.Equal(t, finding.SeverityMedium, instance.Severity)
	assert.Equal(t, finding.SourceStatic, instance.SeveritySource)
	assert.Equal(t, "SELECT Id, Name FROM Opportunity", instance.Metadata["soqlQuery"])
	assert.Equal(t, false, instance.Metadata["inLoop"])
}

func TestUnboundedQueryDetector_InLoop(t *testing.T) {
	source := `public class Sweeper {
    public void sweep(List<Id> ids) {
        for (Integer i = 0; i < ids.size(); i++) {
            List<Account> accs = [SELECT Id FROM Account];
            System.debug(accs);
        }
    }
}`

	file := parseClass(t, "Sweeper", source)
	instances := detect.NewUnboundedQueryDetector().Detect(file)
	require.Len(t, instances, 1)
	assert.Equal(t, finding.SeverityHigh, instances[0].Severity)
	assert.Equal(t, 4, instances[0].LineNumber)
	assert.Equal(t, true, instances[0].Metadata["inLoop"])
}

func TestUnboundedQueryDetector_BoundedSubqueryDoesNotBoundOuter(t *testing.T) {
	source := `public class Nested {
    public void m() {
        List<Account> accs = [SELECT Id, (SELECT Name FROM Contacts WHERE Email != null) FROM Account];
        System.debug(accs);
    }
}`

	file := parseClass(t, "Nested", source)
	instances := detect.NewUnboundedQueryDetector().Detect(file)
	require.Len(t, instances, 1)
	assert.Equal(t, finding.SeverityMedium, instances[0].Severity)
}

func TestUnboundedQueryDetector_AllBounded(t *testing.T) {
	source := `public class Careful {
    public void m() {
        List<Account> a = [SELECT Id FROM Account LIMIT 10];
        List<Contact> c = [SELECT Id FROM Contact WHERE Email != null];
        System.debug(a);
        System.debug(c);
    }
}`

	file := parseClass(t, "Careful", source)
	assert.Empty(t, detect.NewUnboundedQueryDetector().Detect(file))
}
