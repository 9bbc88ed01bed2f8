package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labordash/internal/charts"
	"labordash/internal/dashboard"
	"labordash/internal/dataset"
	apierrors "labordash/internal/errors"
	"labordash/internal/exporter"
	"labordash/internal/shared/testutil"
	"labordash/pkg/contracts/domain"
	"labordash/pkg/contracts/events"
)

const dataPath = "경제활동_통합.csv"

func newService(t *testing.T) (*DashboardService, *MockTableSource) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	source := new(MockTableSource)
	return NewDashboardService(source, dataPath, testutil.Aggregate, nil, logger), source
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.StatusCode)
	assert.Equal(t, code, apiErr.ErrorCode)
}

func TestDashboardDefaults(t *testing.T) {
	svc, source := newService(t)
	source.On("Get", mock.Anything, dataPath).Return(testutil.SampleTable(), nil)

	vm, err := svc.Dashboard(context.Background(), domain.Selection{})
	require.NoError(t, err)

	assert.Equal(t, domain.Selection{Year: 2023, Region: "계"}, vm.Selection)
	assert.Equal(t, "2023년 계 주요 지표", vm.Title)
	assert.Equal(t, []int{2023, 2022, 2021}, vm.Years)
	assert.Equal(t, "계", vm.Regions[0])
	source.AssertExpectations(t)
}

func TestDashboardEmptySelectionIsNotAnError(t *testing.T) {
	svc, source := newService(t)
	source.On("Get", mock.Anything, dataPath).Return(testutil.SampleTable(), nil)

	vm, err := svc.Dashboard(context.Background(), domain.Selection{Year: 2021, Region: "서울"})
	require.NoError(t, err)

	assert.True(t, vm.KPI.Empty)
	assert.Equal(t, dashboard.NoticeNoSelection, vm.KPI.Notice)
	assert.True(t, vm.Composition.Empty)
	assert.False(t, vm.Trend.Empty)
	assert.False(t, vm.Raw.Empty)
}

func TestDashboardErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		sel    domain.Selection
		status int
		code   string
	}{
		{
			name:   "file missing",
			err:    &dataset.NotFoundError{Path: dataPath},
			status: http.StatusServiceUnavailable,
			code:   apierrors.CodeDataUnavailable,
		},
		{
			name:   "undecodable",
			err:    &dataset.DecodeError{Path: dataPath, Fallback: "cp949", Err: errors.New("invalid byte")},
			status: http.StatusInternalServerError,
			code:   apierrors.CodeDataCorrupted,
		},
		{
			name:   "bad number",
			err:    &dataset.ParseError{Path: dataPath, Line: 3, Column: "취업자 (천명)", Value: "abc", Err: errors.New("invalid")},
			status: http.StatusInternalServerError,
			code:   apierrors.CodeDataCorrupted,
		},
		{
			name:   "missing column",
			err:    &dataset.SchemaError{Path: dataPath, Missing: []string{"년도"}},
			status: http.StatusInternalServerError,
			code:   apierrors.CodeDataCorrupted,
		},
		{
			name:   "unexpected",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
			code:   apierrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, source := newService(t)
			source.On("Get", mock.Anything, dataPath).Return(nil, tt.err)

			_, err := svc.Dashboard(context.Background(), tt.sel)
			requireAPIError(t, err, tt.status, tt.code)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDashboardFileMissingMessage(t *testing.T) {
	svc, source := newService(t)
	source.On("Get", mock.Anything, dataPath).Return(nil, &dataset.NotFoundError{Path: "/srv/경제활동_통합.csv"})

	_, err := svc.Dashboard(context.Background(), domain.Selection{})

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "'/srv/경제활동_통합.csv' 파일을 찾을 수 없습니다. 파일 경로를 확인해주세요.", apiErr.Message)
}

func TestDashboardInvalidSelection(t *testing.T) {
	tests := []struct {
		name  string
		sel   domain.Selection
		field string
	}{
		{"unknown year", domain.Selection{Year: 1999}, "year"},
		{"unknown region", domain.Selection{Year: 2023, Region: "제주"}, "region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, source := newService(t)
			source.On("Get", mock.Anything, dataPath).Return(testutil.SampleTable(), nil)

			_, err := svc.Dashboard(context.Background(), tt.sel)
			requireAPIError(t, err, http.StatusBadRequest, apierrors.CodeValidationFailed)

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.field, apiErr.Details.([]apierrors.ValidationError)[0].Field)
		})
	}
}

func TestOptions(t *testing.T) {
	svc, source := newService(t)
	source.On("Get", mock.Anything, dataPath).Return(testutil.SampleTable(), nil)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2023, 2022, 2021}, opts.Years)
	assert.Equal(t, []string{"계", "서울", "부산"}, opts.Regions)
	assert.Equal(t, domain.Selection{Year: 2023, Region: "계"}, opts.Default)
	assert.Equal(t, "sample", opts.Fingerprint)
}

func TestRawTable(t *testing.T) {
	svc, source := newService(t)
	table := testutil.SampleTable()
	source.On("Get", mock.Anything, dataPath).Return(table, nil)

	raw, err := svc.RawTable(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testutil.SampleHeader, raw.Header)
	assert.Len(t, raw.Rows, len(table.Records))
	assert.Equal(t, "sample.csv", raw.Source)
}

func TestChart(t *testing.T) {
	svc, source := newService(t)
	source.On("Get", mock.Anything, dataPath).Return(testutil.SampleTable(), nil)

	var buf bytes.Buffer
	res, err := svc.Chart(context.Background(), &buf, charts.KindTrend, domain.Selection{Year: 2023, Region: "서울"})
	require.NoError(t, err)

	assert.Equal(t, "sample", res.Fingerprint)
	assert.Empty(t, res.Notice)
	assert.Contains(t, buf.String(), "<svg")
}

func TestChartPlaceholder(t *testing.T) {
	svc, source := newService(t)
	source.On("Get", mock.Anything, dataPath).Return(testutil.SampleTable(), nil)

	var buf bytes.Buffer
	res, err := svc.Chart(context.Background(), &buf, charts.KindComposition, domain.Selection{Year: 2021, Region: "부산"})
	require.NoError(t, err)

	assert.Equal(t, dashboard.NoticeNoComposite, res.Notice)
	assert.Contains(t, buf.String(), "<svg")
}

func TestExport(t *testing.T) {
	svc, source := newService(t)
	source.On("Get", mock.Anything, dataPath).Return(testutil.SampleTable(), nil)

	var buf bytes.Buffer
	name, err := svc.Export(context.Background(), &buf, exporter.FormatXLSX, domain.Selection{Region: "서울"})
	require.NoError(t, err)

	assert.Equal(t, "labor_force_2023_서울.xlsx", name)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	buf.Reset()
	name, err = svc.Export(context.Background(), &buf, exporter.FormatCSV, domain.Selection{})
	require.NoError(t, err)
	assert.Equal(t, "labor_force.csv", name)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
}

func TestReloadBroadcasts(t *testing.T) {
	svc, source := newService(t)
	hub := new(MockBroadcaster)
	svc.SetBroadcaster(hub)

	table := testutil.SampleTable()
	source.On("Reload", mock.Anything, dataPath).Return(table, nil)
	hub.On("Broadcast", mock.MatchedBy(func(msg events.WebSocketMessage) bool {
		change, ok := msg.Data.(events.DatasetChange)
		return ok && msg.Type == events.MessageTypeDatasetReloaded &&
			change.Fingerprint == "sample" && change.Records == len(table.Records) && change.Reason == "api"
	})).Once()

	change, err := svc.Reload(context.Background(), "api")
	require.NoError(t, err)
	assert.Equal(t, len(table.Records), change.Records)

	hub.AssertExpectations(t)
}

func TestReloadFailureBroadcastsUnavailable(t *testing.T) {
	svc, source := newService(t)
	hub := new(MockBroadcaster)
	svc.SetBroadcaster(hub)

	source.On("Reload", mock.Anything, dataPath).Return(nil, &dataset.NotFoundError{Path: dataPath})
	hub.On("Broadcast", mock.MatchedBy(func(msg events.WebSocketMessage) bool {
		return msg.Type == events.MessageTypeDatasetUnavailable
	})).Once()

	_, err := svc.Reload(context.Background(), "api")
	requireAPIError(t, err, http.StatusServiceUnavailable, apierrors.CodeDataUnavailable)
	hub.AssertExpectations(t)
}

func TestOnDatasetChangeWithoutBroadcaster(t *testing.T) {
	svc, _ := newService(t)

	assert.NotPanics(t, func() {
		svc.OnDatasetChange(context.Background(), dataset.ChangeEvent{Path: filepath.Join("data", dataPath), Table: testutil.SampleTable()})
	})
}

func TestDashboardWithRealCache(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, dataPath, testutil.SampleCSV)

	logger, _ := testutil.NewTestLogger(t)
	cache := dataset.NewCache(dataset.NewLoader(dataset.DefaultOptions(), logger, nil))
	svc := NewDashboardService(cache, path, testutil.Aggregate, nil, logger)

	vm, err := svc.Dashboard(context.Background(), domain.Selection{Year: 2023, Region: "계"})
	require.NoError(t, err)
	require.Len(t, vm.KPI.Values, 5)
	assert.Equal(t, "1,000", vm.KPI.Values[0].Display)
	assert.Equal(t, "5.00%", vm.KPI.Values[3].Display)

	_, err = svc.Dashboard(context.Background(), domain.Selection{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), svc.CacheStats().Loads)
}
