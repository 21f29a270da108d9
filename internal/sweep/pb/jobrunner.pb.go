// Code in this file mirrors jobrunner.proto. The descriptor is assembled
// from a descriptorpb literal instead of an embedded blob so the two stay in
// sync by inspection; regenerate with protoc-gen-go if the schema grows
// beyond scalar fields.

package pb

import (
	reflect "reflect"

	proto "google.golang.org/protobuf/proto"
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	descriptorpb "google.golang.org/protobuf/types/descriptorpb"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type JobSpec struct {
	state         protoimpl.MessageState
	sizeCache     protoimpl.SizeCache
	unknownFields protoimpl.UnknownFields

	JobId    string `protobuf:"bytes,1,opt,name=job_id,json=jobId,proto3" json:"job_id,omitempty"`
	Index    int32  `protobuf:"varint,2,opt,name=index,proto3" json:"index,omitempty"`
	Strategy string `protobuf:"bytes,3,opt,name=strategy,proto3" json:"strategy,omitempty"`
	Symbol   string `protobuf:"bytes,4,opt,name=symbol,proto3" json:"symbol,omitempty"`
	// Strategy parameters as a JSON object.
	ParamsJson string `protobuf:"bytes,5,opt,name=params_json,json=paramsJson,proto3" json:"params_json,omitempty"`
}

func (x *JobSpec) Reset() {
	*x = JobSpec{}
	mi := &file_jobrunner_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *JobSpec) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*JobSpec) ProtoMessage() {}

func (x *JobSpec) ProtoReflect() protoreflect.Message {
	mi := &file_jobrunner_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

func (x *JobSpec) GetJobId() string {
	if x != nil {
		return x.JobId
	}
	return ""
}

func (x *JobSpec) GetIndex() int32 {
	if x != nil {
		return x.Index
	}
	return 0
}

func (x *JobSpec) GetStrategy() string {
	if x != nil {
		return x.Strategy
	}
	return ""
}

func (x *JobSpec) GetSymbol() string {
	if x != nil {
		return x.Symbol
	}
	return ""
}

func (x *JobSpec) GetParamsJson() string {
	if x != nil {
		return x.ParamsJson
	}
	return ""
}

type SubmitReply struct {
	state         protoimpl.MessageState
	sizeCache     protoimpl.SizeCache
	unknownFields protoimpl.UnknownFields

	Accepted bool   `protobuf:"varint,1,opt,name=accepted,proto3" json:"accepted,omitempty"`
	Message  string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (x *SubmitReply) Reset() {
	*x = SubmitReply{}
	mi := &file_jobrunner_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *SubmitReply) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*SubmitReply) ProtoMessage() {}

func (x *SubmitReply) ProtoReflect() protoreflect.Message {
	mi := &file_jobrunner_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

func (x *SubmitReply) GetAccepted() bool {
	if x != nil {
		return x.Accepted
	}
	return false
}

func (x *SubmitReply) GetMessage() string {
	if x != nil {
		return x.Message
	}
	return ""
}

type PollRequest struct {
	state         protoimpl.MessageState
	sizeCache     protoimpl.SizeCache
	unknownFields protoimpl.UnknownFields

	JobId string `protobuf:"bytes,1,opt,name=job_id,json=jobId,proto3" json:"job_id,omitempty"`
}

func (x *PollRequest) Reset() {
	*x = PollRequest{}
	mi := &file_jobrunner_proto_msgTypes[2]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *PollRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*PollRequest) ProtoMessage() {}

func (x *PollRequest) ProtoReflect() protoreflect.Message {
	mi := &file_jobrunner_proto_msgTypes[2]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

func (x *PollRequest) GetJobId() string {
	if x != nil {
		return x.JobId
	}
	return ""
}

type JobStatus struct {
	state         protoimpl.MessageState
	sizeCache     protoimpl.SizeCache
	unknownFields protoimpl.UnknownFields

	JobId string `protobuf:"bytes,1,opt,name=job_id,json=jobId,proto3" json:"job_id,omitempty"`
	// queued | running | completed | failed | cancelled
	Status string `protobuf:"bytes,2,opt,name=status,proto3" json:"status,omitempty"`
	// MetricsSummary as JSON, set when status is completed.
	MetricsJson string `protobuf:"bytes,3,opt,name=metrics_json,json=metricsJson,proto3" json:"metrics_json,omitempty"`
	ArtifactUri string `protobuf:"bytes,4,opt,name=artifact_uri,json=artifactUri,proto3" json:"artifact_uri,omitempty"`
	Error       string `protobuf:"bytes,5,opt,name=error,proto3" json:"error,omitempty"`
	Attempts    int32  `protobuf:"varint,6,opt,name=attempts,proto3" json:"attempts,omitempty"`
}

func (x *JobStatus) Reset() {
	*x = JobStatus{}
	mi := &file_jobrunner_proto_msgTypes[3]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *JobStatus) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*JobStatus) ProtoMessage() {}

func (x *JobStatus) ProtoReflect() protoreflect.Message {
	mi := &file_jobrunner_proto_msgTypes[3]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

func (x *JobStatus) GetJobId() string {
	if x != nil {
		return x.JobId
	}
	return ""
}

func (x *JobStatus) GetStatus() string {
	if x != nil {
		return x.Status
	}
	return ""
}

func (x *JobStatus) GetMetricsJson() string {
	if x != nil {
		return x.MetricsJson
	}
	return ""
}

func (x *JobStatus) GetArtifactUri() string {
	if x != nil {
		return x.ArtifactUri
	}
	return ""
}

func (x *JobStatus) GetError() string {
	if x != nil {
		return x.Error
	}
	return ""
}

func (x *JobStatus) GetAttempts() int32 {
	if x != nil {
		return x.Attempts
	}
	return 0
}

type CancelRequest struct {
	state         protoimpl.MessageState
	sizeCache     protoimpl.SizeCache
	unknownFields protoimpl.UnknownFields

	JobId string `protobuf:"bytes,1,opt,name=job_id,json=jobId,proto3" json:"job_id,omitempty"`
}

func (x *CancelRequest) Reset() {
	*x = CancelRequest{}
	mi := &file_jobrunner_proto_msgTypes[4]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *CancelRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*CancelRequest) ProtoMessage() {}

func (x *CancelRequest) ProtoReflect() protoreflect.Message {
	mi := &file_jobrunner_proto_msgTypes[4]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

func (x *CancelRequest) GetJobId() string {
	if x != nil {
		return x.JobId
	}
	return ""
}

type CancelReply struct {
	state         protoimpl.MessageState
	sizeCache     protoimpl.SizeCache
	unknownFields protoimpl.UnknownFields

	Cancelled bool `protobuf:"varint,1,opt,name=cancelled,proto3" json:"cancelled,omitempty"`
}

func (x *CancelReply) Reset() {
	*x = CancelReply{}
	mi := &file_jobrunner_proto_msgTypes[5]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *CancelReply) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*CancelReply) ProtoMessage() {}

func (x *CancelReply) ProtoReflect() protoreflect.Message {
	mi := &file_jobrunner_proto_msgTypes[5]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

func (x *CancelReply) GetCancelled() bool {
	if x != nil {
		return x.Cancelled
	}
	return false
}

var File_jobrunner_proto protoreflect.FileDescriptor

var file_jobrunner_proto_rawDesc = buildRawDesc()

// buildRawDesc assembles the wire form of jobrunner.proto's descriptor.
func buildRawDesc() []byte {
	str := func(name string, number int32) *descriptorpb.FieldDescriptorProto {
		return scalarField(name, number, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	}
	i32 := func(name string, number int32) *descriptorpb.FieldDescriptorProto {
		return scalarField(name, number, descriptorpb.FieldDescriptorProto_TYPE_INT32)
	}
	boolf := func(name string, number int32) *descriptorpb.FieldDescriptorProto {
		return scalarField(name, number, descriptorpb.FieldDescriptorProto_TYPE_BOOL)
	}
	msg := func(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
		return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
	}
	method := func(name, in, out string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(".aitrader.sweep." + in),
			OutputType: proto.String(".aitrader.sweep." + out),
		}
	}

	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("jobrunner.proto"),
		Package: proto.String("aitrader.sweep"),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("aitrader/internal/sweep/pb"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			msg("JobSpec",
				str("job_id", 1), i32("index", 2), str("strategy", 3),
				str("symbol", 4), str("params_json", 5)),
			msg("SubmitReply", boolf("accepted", 1), str("message", 2)),
			msg("PollRequest", str("job_id", 1)),
			msg("JobStatus",
				str("job_id", 1), str("status", 2), str("metrics_json", 3),
				str("artifact_uri", 4), str("error", 5), i32("attempts", 6)),
			msg("CancelRequest", str("job_id", 1)),
			msg("CancelReply", boolf("cancelled", 1)),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("JobRunner"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("Submit", "JobSpec", "SubmitReply"),
				method("Poll", "PollRequest", "JobStatus"),
				method("Cancel", "CancelRequest", "CancelReply"),
			},
		}},
	}

	b, err := proto.Marshal(fd)
	if err != nil {
		panic("pb: marshaling jobrunner descriptor: " + err.Error())
	}
	return b
}

func scalarField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     typ.Enum(),
		JsonName: proto.String(jsonName(name)),
	}
}

// jsonName converts a snake_case field name to protobuf's JSON camelCase.
func jsonName(s string) string {
	out := make([]byte, 0, len(s))
	upper := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}

var file_jobrunner_proto_msgTypes = make([]protoimpl.MessageInfo, 6)
var file_jobrunner_proto_goTypes = []any{
	(*JobSpec)(nil),       // 0: aitrader.sweep.JobSpec
	(*SubmitReply)(nil),   // 1: aitrader.sweep.SubmitReply
	(*PollRequest)(nil),   // 2: aitrader.sweep.PollRequest
	(*JobStatus)(nil),     // 3: aitrader.sweep.JobStatus
	(*CancelRequest)(nil), // 4: aitrader.sweep.CancelRequest
	(*CancelReply)(nil),   // 5: aitrader.sweep.CancelReply
}
var file_jobrunner_proto_depIdxs = []int32{
	0, // 0: aitrader.sweep.JobRunner.Submit:input_type -> aitrader.sweep.JobSpec
	2, // 1: aitrader.sweep.JobRunner.Poll:input_type -> aitrader.sweep.PollRequest
	4, // 2: aitrader.sweep.JobRunner.Cancel:input_type -> aitrader.sweep.CancelRequest
	1, // 3: aitrader.sweep.JobRunner.Submit:output_type -> aitrader.sweep.SubmitReply
	3, // 4: aitrader.sweep.JobRunner.Poll:output_type -> aitrader.sweep.JobStatus
	5, // 5: aitrader.sweep.JobRunner.Cancel:output_type -> aitrader.sweep.CancelReply
	3, // [3:6] is the sub-list for method output_type
	0, // [0:3] is the sub-list for method input_type
	0, // [0:0] is the sub-list for extension type_name
	0, // [0:0] is the sub-list for extension extendee
	0, // [0:0] is the sub-list for field type_name
}

func init() { file_jobrunner_proto_init() }
func file_jobrunner_proto_init() {
	if File_jobrunner_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: file_jobrunner_proto_rawDesc,
			NumEnums:      0,
			NumMessages:   6,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_jobrunner_proto_goTypes,
		DependencyIndexes: file_jobrunner_proto_depIdxs,
		MessageInfos:      file_jobrunner_proto_msgTypes,
	}.Build()
	File_jobrunner_proto = out.File
	file_jobrunner_proto_goTypes = nil
	file_jobrunner_proto_depIdxs = nil
}
