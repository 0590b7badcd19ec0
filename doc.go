/*
go-yologrid provides the grid-based object detection support code used in
plant phenotyping pipelines: encoding ground truth bounding boxes into the
fixed size per-grid-cell label tensors a YOLO style network is trained
against, decoding raw network outputs back into pixel-space boxes, filtering
candidate detections with non-maximal suppression, and scoring detection
quality with mean average precision (mAP).

The neural network forward pass itself is an external collaborator; this
library consumes its raw per-cell output tensors along with the data
loader's ground truth box lists, and produces detection lists and accuracy
metrics.

See the box, encode, postprocess, evaluate, render and annotations
subpackages for the individual pipeline stages.
*/
package yologrid
