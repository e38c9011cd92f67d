package pipeline

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendtypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/text-classifier/internal/classify"
)

type fakeStore struct {
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeStore) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

// fakeService drives both the classifier and job APIs straight to their
// terminal states so the watch loops finish on the first probe.
type fakeService struct {
	modelStatus comprehendtypes.ModelStatus
	jobStatus   comprehendtypes.JobStatus
	outputURI   string
	trainErr    error
}

func (f *fakeService) CreateDocumentClassifier(ctx context.Context, params *comprehend.CreateDocumentClassifierInput, optFns ...func(*comprehend.Options)) (*comprehend.CreateDocumentClassifierOutput, error) {
	if f.trainErr != nil {
		return nil, f.trainErr
	}
	return &comprehend.CreateDocumentClassifierOutput{
		DocumentClassifierArn: aws.String("arn:classifier/test"),
	}, nil
}

func (f *fakeService) DescribeDocumentClassifier(ctx context.Context, params *comprehend.DescribeDocumentClassifierInput, optFns ...func(*comprehend.Options)) (*comprehend.DescribeDocumentClassifierOutput, error) {
	return &comprehend.DescribeDocumentClassifierOutput{
		DocumentClassifierProperties: &comprehendtypes.DocumentClassifierProperties{
			DocumentClassifierArn: params.DocumentClassifierArn,
			Status:                f.modelStatus,
		},
	}, nil
}

func (f *fakeService) StartDocumentClassificationJob(ctx context.Context, params *comprehend.StartDocumentClassificationJobInput, optFns ...func(*comprehend.Options)) (*comprehend.StartDocumentClassificationJobOutput, error) {
	return &comprehend.StartDocumentClassificationJobOutput{
		JobId:     aws.String("job-1"),
		JobStatus: comprehendtypes.JobStatusSubmitted,
	}, nil
}

func (f *fakeService) DescribeDocumentClassificationJob(ctx context.Context, params *comprehend.DescribeDocumentClassificationJobInput, optFns ...func(*comprehend.Options)) (*comprehend.DescribeDocumentClassificationJobOutput, error) {
	props := &comprehendtypes.DocumentClassificationJobProperties{
		JobId:     params.JobId,
		JobStatus: f.jobStatus,
	}
	if f.outputURI != "" {
		props.OutputDataConfig = &comprehendtypes.OutputDataConfig{S3Uri: aws.String(f.outputURI)}
	}
	return &comprehend.DescribeDocumentClassificationJobOutput{
		DocumentClassificationJobProperties: props,
	}, nil
}

func buildResultArchive(t *testing.T, records string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "predictions.jsonl",
		Mode:     0644,
		Size:     int64(len(records)),
		Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write([]byte(records))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func writeFixtures(t *testing.T) (labelsPath, trainPath, testPath, workDir string) {
	t.Helper()
	tmpDir := t.TempDir()
	labelsPath = filepath.Join(tmpDir, "labels.txt")
	trainPath = filepath.Join(tmpDir, "train.csv")
	testPath = filepath.Join(tmpDir, "test.csv")
	workDir = filepath.Join(tmpDir, "work")

	require.NoError(t, os.WriteFile(labelsPath, []byte("Company\nSchool\n"), 0644))
	require.NoError(t, os.WriteFile(trainPath, []byte("2,Acme High,A school in town, USA\n1,Acme,Makes anvils\n"), 0644))
	require.NoError(t, os.WriteFile(testPath, []byte("2,Oak High,Another school\n"), 0644))
	return labelsPath, trainPath, testPath, workDir
}

func happyOptions(t *testing.T, store *fakeStore, svc *fakeService) RunOptions {
	t.Helper()
	labelsPath, trainPath, testPath, workDir := writeFixtures(t)
	return RunOptions{
		LabelsPath:     labelsPath,
		TrainPath:      trainPath,
		TestPath:       testPath,
		WorkDir:        workDir,
		Bucket:         "datasets",
		Prefix:         "news",
		RoleARN:        "arn:role",
		ClassifierName: "news-classifier",
		Language:       "en",
		PollInterval:   time.Millisecond,
		Timeout:        time.Second,
		Store:          store,
		Classifier:     svc,
		Jobs:           svc,
	}
}

func TestRunPipeline_EndToEnd(t *testing.T) {
	store := newFakeStore()
	records := `{"File":"test.transformed.csv","Line":0,"Classes":[{"Name":"School","Score":0.93}]}` + "\n"
	store.objects["datasets/news/results/output/output.tar.gz"] = buildResultArchive(t, records)

	svc := &fakeService{
		modelStatus: comprehendtypes.ModelStatusTrained,
		jobStatus:   comprehendtypes.JobStatusCompleted,
		outputURI:   "s3://datasets/news/results/output/output.tar.gz",
	}

	var events []ProgressEvent
	opts := happyOptions(t, store, svc)
	opts.OnProgress = func(e ProgressEvent) { events = append(events, e) }

	err := RunPipeline(context.Background(), opts)
	require.NoError(t, err)

	// Both transformed datasets were uploaded.
	assert.Equal(t, "School,A school in town, USA\nCompany,Makes anvils\n",
		string(store.objects["datasets/news/train/train.transformed.csv"]))
	assert.Equal(t, "Another school\n",
		string(store.objects["datasets/news/test/test.transformed.csv"]))

	// Progress events cover every phase.
	var steps []string
	for _, e := range events {
		steps = append(steps, e.Step)
	}
	assert.Contains(t, steps, "label_index")
	assert.Contains(t, steps, "train_dataset")
	assert.Contains(t, steps, "upload")
	assert.Contains(t, steps, "classifier")
	assert.Contains(t, steps, "inference_job")
	assert.Contains(t, steps, "predictions")
}

func TestRunPipeline_TrainingFailure(t *testing.T) {
	store := newFakeStore()
	svc := &fakeService{
		modelStatus: comprehendtypes.ModelStatusInError,
	}

	err := RunPipeline(context.Background(), happyOptions(t, store, svc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "training failed")
}

func TestRunPipeline_TrainingTimeoutIsExplicit(t *testing.T) {
	store := newFakeStore()
	svc := &fakeService{
		modelStatus: comprehendtypes.ModelStatusTraining,
	}

	opts := happyOptions(t, store, svc)
	opts.Timeout = 30 * time.Millisecond

	err := RunPipeline(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not reach a terminal state")
	assert.Contains(t, err.Error(), "TRAINING")
}

func TestRunPipeline_UnknownLabelAborts(t *testing.T) {
	store := newFakeStore()
	svc := &fakeService{modelStatus: comprehendtypes.ModelStatusTrained}

	opts := happyOptions(t, store, svc)
	require.NoError(t, os.WriteFile(opts.TrainPath, []byte("9,Title,body\n"), 0644))

	err := RunPipeline(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown label index 9")

	// Nothing was uploaded after the failed transform.
	assert.Empty(t, store.objects)
}

func TestRunPipeline_SubmitFailure(t *testing.T) {
	store := newFakeStore()
	svc := &fakeService{trainErr: errors.New("AccessDeniedException")}

	err := RunPipeline(context.Background(), happyOptions(t, store, svc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating classifier failed")
}

func TestFetchResults(t *testing.T) {
	store := newFakeStore()
	records := `{"Line":0,"Classes":[{"Name":"School","Score":0.9}]}` + "\n" +
		`{"Line":1,"Classes":[{"Name":"Company","Score":0.8}]}` + "\n"
	store.objects["datasets/news/results/output/output.tar.gz"] = buildResultArchive(t, records)

	svc := &fakeService{
		jobStatus: comprehendtypes.JobStatusCompleted,
		outputURI: "s3://datasets/news/results/output/output.tar.gz",
	}

	preds, err := FetchResults(context.Background(), store, svc, classify.JobHandle{ID: "job-1"}, t.TempDir())
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, 0, preds[0].Line)
	assert.Equal(t, 1, preds[1].Line)
}

func TestFetchResults_MissingArchive(t *testing.T) {
	svc := &fakeService{
		jobStatus: comprehendtypes.JobStatusCompleted,
		outputURI: "s3://datasets/missing/output.tar.gz",
	}

	_, err := FetchResults(context.Background(), newFakeStore(), svc, classify.JobHandle{ID: "job-1"}, t.TempDir())
	assert.Error(t, err)
}
